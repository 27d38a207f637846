package repository

import (
	"context"

	"cosmetics-store/internal/domain"
)

// ProductFilter narrows product listings. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID int64
	Featured   *bool
	Search     string
	Limit      int
}

// ProductRepository defines persistence operations for catalog products.
type ProductRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, product *domain.Product) (int64, error)
	Update(ctx context.Context, product *domain.Product) error
	SetStatus(ctx context.Context, id int64, status domain.ProductStatus) error
	GetActive(ctx context.Context, id int64) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
}

// CategoryRepository defines persistence operations for product categories.
type CategoryRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, category *domain.Category) (int64, error)
	ListActive(ctx context.Context) ([]domain.Category, error)
}
