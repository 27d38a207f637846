package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cosmetics-store/internal/domain"
	"cosmetics-store/internal/repository"
)

const (
	createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	category_id INTEGER NULL REFERENCES categories(id),
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	price TEXT NOT NULL,
	discount_price TEXT NULL,
	brand TEXT NOT NULL DEFAULT '',
	stock_quantity INTEGER NOT NULL DEFAULT 0,
	sku TEXT NOT NULL DEFAULT '',
	images TEXT NOT NULL DEFAULT '[]',
	featured INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'active',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

	createCategoriesTable = `
CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'active',
	created_at DATETIME NOT NULL
);
`

	productColumns = `p.id, p.category_id, COALESCE(c.name, ''), p.name, p.description, p.price, p.discount_price, p.brand, p.stock_quantity, p.sku, p.images, p.featured, p.status, p.created_at, p.updated_at`
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createProductsTable); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) (int64, error) {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if product.Status == "" {
		product.Status = domain.ProductStatusActive
	}

	images, err := encodeImages(product.Images)
	if err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO products (category_id, name, description, price, discount_price, brand, stock_quantity, sku, images, featured, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.CategoryID,
		product.Name,
		product.Description,
		product.Price.String(),
		nullDecimal(product.DiscountPrice),
		product.Brand,
		product.StockQuantity,
		product.SKU,
		images,
		product.Featured,
		string(product.Status),
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("product last insert id: %w", err)
	}
	product.ID = id
	return id, nil
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()

	images, err := encodeImages(product.Images)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE products
SET category_id=?, name=?, description=?, price=?, discount_price=?, brand=?, stock_quantity=?, sku=?, images=?, featured=?, status=?, updated_at=?
WHERE id=?`,
		product.CategoryID,
		product.Name,
		product.Description,
		product.Price.String(),
		nullDecimal(product.DiscountPrice),
		product.Brand,
		product.StockQuantity,
		product.SKU,
		images,
		product.Featured,
		string(product.Status),
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("product update rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("product %w", repository.ErrNotFound)
	}
	return nil
}

func (r *ProductRepository) SetStatus(ctx context.Context, id int64, status domain.ProductStatus) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE products SET status=?, updated_at=? WHERE id=?`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set product status: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("product status rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("product %w", repository.ErrNotFound)
	}
	return nil
}

func (r *ProductRepository) GetActive(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+productColumns+`
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE p.id = ? AND p.status = 'active'`,
		id,
	)
	return scanProduct(row)
}

// GetByID looks a product up regardless of status, so admins can edit and
// reactivate soft-deleted entries.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+productColumns+`
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE p.id = ?`,
		id,
	)
	return scanProduct(row)
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	query := `
SELECT ` + productColumns + `
FROM products p
LEFT JOIN categories c ON c.id = p.category_id
WHERE p.status = 'active'`
	var args []any

	if filter.CategoryID > 0 {
		query += ` AND p.category_id = ?`
		args = append(args, filter.CategoryID)
	}
	if filter.Featured != nil {
		query += ` AND p.featured = ?`
		args = append(args, *filter.Featured)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		query += ` AND (p.name LIKE ? OR p.description LIKE ?)`
		pattern := "%" + s + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func scanProduct(row interface {
	Scan(dest ...any) error
}) (*domain.Product, error) {
	var (
		product    domain.Product
		categoryID sql.NullInt64
		price      string
		discount   sql.NullString
		images     string
		status     string
	)
	if err := row.Scan(
		&product.ID,
		&categoryID,
		&product.CategoryName,
		&product.Name,
		&product.Description,
		&price,
		&discount,
		&product.Brand,
		&product.StockQuantity,
		&product.SKU,
		&images,
		&product.Featured,
		&status,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	if categoryID.Valid {
		product.CategoryID = &categoryID.Int64
	}
	var err error
	if product.Price, err = parseDecimal(price); err != nil {
		return nil, fmt.Errorf("product %d price: %w", product.ID, err)
	}
	if discount.Valid {
		d, err := parseDecimal(discount.String)
		if err != nil {
			return nil, fmt.Errorf("product %d discount price: %w", product.ID, err)
		}
		product.DiscountPrice = &d
	}
	if err := json.Unmarshal([]byte(images), &product.Images); err != nil {
		return nil, fmt.Errorf("product %d images: %w", product.ID, err)
	}
	product.Status = domain.ProductStatus(status)
	return &product, nil
}

func encodeImages(images []string) (string, error) {
	if images == nil {
		images = []string{}
	}
	data, err := json.Marshal(images)
	if err != nil {
		return "", fmt.Errorf("encode product images: %w", err)
	}
	return string(data), nil
}

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCategoriesTable); err != nil {
		return fmt.Errorf("create categories table: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) (int64, error) {
	category.CreatedAt = time.Now().UTC()
	if category.Status == "" {
		category.Status = "active"
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO categories (name, description, status, created_at)
VALUES (?, ?, ?, ?)`,
		category.Name,
		category.Description,
		category.Status,
		category.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("category last insert id: %w", err)
	}
	category.ID = id
	return id, nil
}

func (r *CategoryRepository) ListActive(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, description, status, created_at
FROM categories
WHERE status = 'active'
ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.Status, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}
