package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus controls catalog visibility. Deleting a product only flips
// it to inactive so existing order lines keep a valid reference.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product is a catalog entry.
type Product struct {
	ID            int64
	CategoryID    *int64
	CategoryName  string
	Name          string
	Description   string
	Price         decimal.Decimal
	DiscountPrice *decimal.Decimal
	Brand         string
	StockQuantity int64
	SKU           string
	Images        []string
	Featured      bool
	Status        ProductStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Category groups products.
type Category struct {
	ID          int64
	Name        string
	Description string
	Status      string
	CreatedAt   time.Time
}
