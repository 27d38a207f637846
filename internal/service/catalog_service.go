package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cosmetics-store/internal/domain"
	"cosmetics-store/internal/repository"
)

// ErrNotFound signals that a referenced catalog entity does not exist.
var ErrNotFound = errors.New("not found")

// ProductInput carries the admin-supplied fields of a product.
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	CategoryID    *int64
	Brand         string
	StockQuantity int64
	SKU           string
	Images        []string
	Featured      bool
	Status        domain.ProductStatus
}

// CatalogService exposes product and category operations. Reads serve the
// storefront; writes are admin only and gated upstream.
type CatalogService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductAnyStatus(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error)
	DeactivateProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*domain.Category, error)
}

type catalogService struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
}

func NewCatalogService(products repository.ProductRepository, categories repository.CategoryRepository) CatalogService {
	return &catalogService{products: products, categories: categories}
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	return s.products.List(ctx, filter)
}

func (s *catalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetActive(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

// GetProductAnyStatus looks a product up without the active-only filter.
// Admin edits go through here so a soft-deleted product stays reachable and
// can be flipped back to active.
func (s *catalogService) GetProductAnyStatus(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	product, err := productFromInput(input)
	if err != nil {
		return nil, err
	}
	if _, err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error) {
	product, err := productFromInput(input)
	if err != nil {
		return nil, err
	}
	product.ID = id
	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, id int64) error {
	err := s.products.SetStatus(ctx, id, domain.ProductStatusInactive)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *catalogService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.ListActive(ctx)
}

func (s *catalogService) CreateCategory(ctx context.Context, name, description string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrValidation)
	}
	category := &domain.Category{Name: name, Description: strings.TrimSpace(description)}
	if _, err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func productFromInput(input ProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: product price cannot be negative", ErrValidation)
	}
	if input.StockQuantity < 0 {
		return nil, fmt.Errorf("%w: stock quantity cannot be negative", ErrValidation)
	}

	status := input.Status
	switch status {
	case "":
		status = domain.ProductStatusActive
	case domain.ProductStatusActive, domain.ProductStatusInactive:
	default:
		return nil, fmt.Errorf("%w: unknown product status %q", ErrValidation, status)
	}

	return &domain.Product{
		CategoryID:    input.CategoryID,
		Name:          name,
		Description:   strings.TrimSpace(input.Description),
		Price:         input.Price,
		DiscountPrice: input.DiscountPrice,
		Brand:         strings.TrimSpace(input.Brand),
		StockQuantity: input.StockQuantity,
		SKU:           strings.TrimSpace(input.SKU),
		Images:        input.Images,
		Featured:      input.Featured,
		Status:        status,
	}, nil
}
