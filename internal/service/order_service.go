package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"cosmetics-store/internal/auth"
	"cosmetics-store/internal/domain"
	"cosmetics-store/internal/repository"
)

// ErrPersistence is the opaque failure surfaced when the order write fails
// irrecoverably. The underlying cause is logged, never returned to callers.
var ErrPersistence = errors.New("order could not be saved")

// orderNumberAttempts bounds retries when a generated order number collides.
const orderNumberAttempts = 3

// CartItem is one line of an incoming cart. Price is the unit price the
// client checked out with; it is captured on the order line as-is.
type CartItem struct {
	ProductID int64
	Quantity  int64
	Price     decimal.Decimal
}

// PlaceOrderInput carries everything needed to place an order for a user.
type PlaceOrderInput struct {
	Items           []CartItem
	ShippingAddress string
	PaymentMethod   string
	Notes           string
}

// PlacedOrder is the result of a successful checkout.
type PlacedOrder struct {
	OrderID     int64
	OrderNumber string
	TotalAmount decimal.Decimal
}

// OrderService coordinates the checkout transaction and order retrieval.
type OrderService interface {
	PlaceOrder(ctx context.Context, identity *auth.Claims, input PlaceOrderInput) (*PlacedOrder, error)
	ListOrders(ctx context.Context, identity *auth.Claims) ([]domain.OrderSummary, error)
}

type orderService struct {
	orders       repository.OrderRepository
	catalog      repository.ProductRepository
	numberPrefix string
	logger       *logrus.Logger
}

func NewOrderService(orders repository.OrderRepository, catalog repository.ProductRepository, numberPrefix string, logger *logrus.Logger) OrderService {
	return &orderService{
		orders:       orders,
		catalog:      catalog,
		numberPrefix: numberPrefix,
		logger:       logger,
	}
}

// PlaceOrder validates the cart, computes the total in exact decimal
// arithmetic, and commits the order header together with all line items as
// one atomic unit. No partial order is ever observable.
func (s *orderService) PlaceOrder(ctx context.Context, identity *auth.Claims, input PlaceOrderInput) (*PlacedOrder, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return nil, fmt.Errorf("%w: shipping address is required", ErrValidation)
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(input.Items))
	for i, cartItem := range input.Items {
		if cartItem.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item %d has non-positive quantity", ErrValidation, i+1)
		}
		if !cartItem.Price.IsPositive() {
			return nil, fmt.Errorf("%w: item %d has non-positive price", ErrValidation, i+1)
		}

		if _, err := s.catalog.GetActive(ctx, cartItem.ProductID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d is not available", ErrValidation, cartItem.ProductID)
			}
			s.logger.WithError(err).WithField("product_id", cartItem.ProductID).Error("resolve cart product")
			return nil, ErrPersistence
		}

		lineTotal := cartItem.Price.Mul(decimal.NewFromInt(cartItem.Quantity)).Round(2)
		items = append(items, domain.OrderItem{
			ProductID: cartItem.ProductID,
			Quantity:  cartItem.Quantity,
			Price:     cartItem.Price,
			Total:     lineTotal,
		})
		total = total.Add(lineTotal)
	}

	order := &domain.Order{
		UserID:          identity.UserID,
		TotalAmount:     total,
		ShippingAddress: strings.TrimSpace(input.ShippingAddress),
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		Notes:           strings.TrimSpace(input.Notes),
		Status:          domain.OrderStatusPending,
		Items:           items,
	}

	// timestamp-only numbers can collide; regenerate on conflict and let
	// the UNIQUE constraint arbitrate
	var lastErr error
	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		order.OrderNumber = s.generateOrderNumber()
		if _, err := s.orders.Create(ctx, order); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				lastErr = err
				continue
			}
			s.logger.WithError(err).WithField("user_id", identity.UserID).Error("create order")
			return nil, ErrPersistence
		}
		return &PlacedOrder{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			TotalAmount: order.TotalAmount,
		}, nil
	}

	s.logger.WithError(lastErr).WithField("user_id", identity.UserID).Error("order number generation exhausted")
	return nil, ErrPersistence
}

// ListOrders returns the caller's orders, newest first. Ownership filtering
// happens in the query; user A never sees user B's orders.
func (s *orderService) ListOrders(ctx context.Context, identity *auth.Claims) ([]domain.OrderSummary, error) {
	orders, err := s.orders.ListByUser(ctx, identity.UserID)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", identity.UserID).Error("list orders")
		return nil, ErrPersistence
	}
	return orders, nil
}

func (s *orderService) generateOrderNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return fmt.Sprintf("%s%d-%s", s.numberPrefix, time.Now().UnixMilli(), suffix)
}
