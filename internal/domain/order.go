package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks an order through its lifecycle. New orders always start
// as pending; later transitions are out of band for this service.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the header row of a placed order. TotalAmount always equals the
// sum of its items' totals; the pair is written in a single transaction and
// never updated afterwards.
type Order struct {
	ID              int64
	UserID          int64
	OrderNumber     string
	TotalAmount     decimal.Decimal
	ShippingAddress string
	PaymentMethod   string
	Notes           string
	Status          OrderStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Items           []OrderItem
}

// OrderItem is one product line within an order. Price is the unit price in
// effect when the order was placed, not the current catalog price.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	Price     decimal.Decimal
	Total     decimal.Decimal
}

// OrderSummary is an order annotated with a readable description of its
// items, e.g. "Rose Lipstick x2, Face Serum x1".
type OrderSummary struct {
	Order
	ItemsSummary string
}
