package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cosmetics-store/internal/domain"
	"cosmetics-store/internal/repository"
)

const (
	createOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL REFERENCES users(id),
	order_number TEXT NOT NULL UNIQUE,
	total_amount TEXT NOT NULL,
	shipping_address TEXT NOT NULL,
	payment_method TEXT NOT NULL,
	notes TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`

	createOrderItemsTable = `
CREATE TABLE IF NOT EXISTS order_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id INTEGER NOT NULL REFERENCES orders(id),
	product_id INTEGER NOT NULL REFERENCES products(id),
	quantity INTEGER NOT NULL,
	price TEXT NOT NULL,
	total TEXT NOT NULL
);
`
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createOrdersTable); err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createOrderItemsTable); err != nil {
		return fmt.Errorf("create order items table: %w", err)
	}
	return nil
}

// Create writes the order header and all of its line items in a single
// transaction. Either everything commits or nothing is visible; an order
// header must never exist without its items.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (int64, error) {
	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
INSERT INTO orders (user_id, order_number, total_amount, shipping_address, payment_method, notes, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.UserID,
		order.OrderNumber,
		order.TotalAmount.String(),
		order.ShippingAddress,
		order.PaymentMethod,
		order.Notes,
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("order number %w", repository.ErrDuplicate)
		}
		return 0, fmt.Errorf("insert order: %w", err)
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("order last insert id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO order_items (order_id, product_id, quantity, price, total)
VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare order item insert: %w", err)
	}
	defer stmt.Close()

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = orderID
		res, err := stmt.ExecContext(ctx,
			orderID,
			item.ProductID,
			item.Quantity,
			item.Price.String(),
			item.Total.String(),
		)
		if err != nil {
			return 0, fmt.Errorf("insert order item: %w", err)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return 0, fmt.Errorf("order item last insert id: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit order: %w", err)
	}
	order.ID = orderID
	return orderID, nil
}

// ListByUser returns the user's orders newest first, each annotated with a
// "product x quantity" summary of its items.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.OrderSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT o.id, o.user_id, o.order_number, o.total_amount, o.shipping_address, o.payment_method, o.notes, o.status, o.created_at, o.updated_at,
       COALESCE(GROUP_CONCAT(p.name || ' x' || oi.quantity, ', '), '') AS items
FROM orders o
LEFT JOIN order_items oi ON oi.order_id = o.id
LEFT JOIN products p ON p.id = oi.product_id
WHERE o.user_id = ?
GROUP BY o.id
ORDER BY o.created_at DESC, o.id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.OrderSummary
	for rows.Next() {
		var (
			summary domain.OrderSummary
			total   string
			status  string
		)
		if err := rows.Scan(
			&summary.ID,
			&summary.UserID,
			&summary.OrderNumber,
			&total,
			&summary.ShippingAddress,
			&summary.PaymentMethod,
			&summary.Notes,
			&status,
			&summary.CreatedAt,
			&summary.UpdatedAt,
			&summary.ItemsSummary,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if summary.TotalAmount, err = parseDecimal(total); err != nil {
			return nil, fmt.Errorf("order %d total: %w", summary.ID, err)
		}
		summary.Status = domain.OrderStatus(status)
		orders = append(orders, summary)
	}
	return orders, rows.Err()
}

// GetItems returns the line items of one order.
func (r *OrderRepository) GetItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, order_id, product_id, quantity, price, total
FROM order_items
WHERE order_id = ?
ORDER BY id ASC`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item  domain.OrderItem
			price string
			total string
		)
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &price, &total); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if item.Price, err = parseDecimal(price); err != nil {
			return nil, fmt.Errorf("order item %d price: %w", item.ID, err)
		}
		if item.Total, err = parseDecimal(total); err != nil {
			return nil, fmt.Errorf("order item %d total: %w", item.ID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
