package repository

import (
	"context"

	"cosmetics-store/internal/domain"
)

// OrderRepository defines persistence operations for orders and their line
// items. Create must write the header and all items as one atomic unit.
type OrderRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, order *domain.Order) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.OrderSummary, error)
	GetItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error)
}
