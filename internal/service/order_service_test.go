package service

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cosmetics-store/internal/auth"
	"cosmetics-store/internal/domain"
	"cosmetics-store/internal/repository"
)

type fakeOrderRepo struct {
	orders        []domain.Order
	nextID        int64
	failDuplicate int // reject this many creates with ErrDuplicate
	failWith      error
}

func (r *fakeOrderRepo) Init(context.Context) error { return nil }

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) (int64, error) {
	if r.failWith != nil {
		return 0, r.failWith
	}
	if r.failDuplicate > 0 {
		r.failDuplicate--
		return 0, fmt.Errorf("order number %w", repository.ErrDuplicate)
	}
	r.nextID++
	order.ID = r.nextID
	r.orders = append(r.orders, *order)
	return order.ID, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID int64) ([]domain.OrderSummary, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var summaries []domain.OrderSummary
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].UserID == userID {
			summaries = append(summaries, domain.OrderSummary{Order: r.orders[i]})
		}
	}
	return summaries, nil
}

func (r *fakeOrderRepo) GetItems(_ context.Context, orderID int64) ([]domain.OrderItem, error) {
	for _, order := range r.orders {
		if order.ID == orderID {
			return order.Items, nil
		}
	}
	return nil, fmt.Errorf("order %w", repository.ErrNotFound)
}

type fakeCatalogRepo struct {
	products map[int64]*domain.Product
}

func newFakeCatalogRepo(ids ...int64) *fakeCatalogRepo {
	repo := &fakeCatalogRepo{products: map[int64]*domain.Product{}}
	for _, id := range ids {
		repo.products[id] = &domain.Product{
			ID:     id,
			Name:   fmt.Sprintf("Product %d", id),
			Price:  decimal.NewFromFloat(9.99),
			Status: domain.ProductStatusActive,
		}
	}
	return repo
}

func (r *fakeCatalogRepo) Init(context.Context) error { return nil }

func (r *fakeCatalogRepo) Create(_ context.Context, product *domain.Product) (int64, error) {
	id := int64(len(r.products) + 1)
	product.ID = id
	r.products[id] = product
	return id, nil
}

func (r *fakeCatalogRepo) Update(_ context.Context, product *domain.Product) error {
	if _, ok := r.products[product.ID]; !ok {
		return fmt.Errorf("product %w", repository.ErrNotFound)
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeCatalogRepo) SetStatus(_ context.Context, id int64, status domain.ProductStatus) error {
	product, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product %w", repository.ErrNotFound)
	}
	product.Status = status
	return nil
}

func (r *fakeCatalogRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product %w", repository.ErrNotFound)
	}
	return product, nil
}

func (r *fakeCatalogRepo) GetActive(_ context.Context, id int64) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok || product.Status != domain.ProductStatusActive {
		return nil, fmt.Errorf("product %w", repository.ErrNotFound)
	}
	return product, nil
}

func (r *fakeCatalogRepo) List(context.Context, repository.ProductFilter) ([]domain.Product, error) {
	return nil, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func customerClaims(userID int64) *auth.Claims {
	return &auth.Claims{UserID: userID, Username: "amy", Email: "a@x.com", Role: domain.RoleCustomer}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPlaceOrder_ComputesExactTotal(t *testing.T) {
	orders := &fakeOrderRepo{}
	svc := NewOrderService(orders, newFakeCatalogRepo(7, 8), "ISY", quietLogger())

	placed, err := svc.PlaceOrder(context.Background(), customerClaims(1), PlaceOrderInput{
		Items: []CartItem{
			{ProductID: 7, Quantity: 2, Price: dec("9.99")},
			{ProductID: 8, Quantity: 3, Price: dec("0.10")},
		},
		ShippingAddress: "1 Main St",
		PaymentMethod:   "card",
	})
	require.NoError(t, err)
	assert.True(t, placed.TotalAmount.Equal(dec("20.28")), "got %s", placed.TotalAmount)
	assert.NotZero(t, placed.OrderID)

	require.Len(t, orders.orders, 1)
	stored := orders.orders[0]
	require.Len(t, stored.Items, 2)
	assert.True(t, stored.Items[0].Price.Equal(dec("9.99")))
	assert.EqualValues(t, 2, stored.Items[0].Quantity)
	assert.True(t, stored.Items[0].Total.Equal(dec("19.98")))
	assert.True(t, stored.Items[1].Total.Equal(dec("0.30")))
	assert.True(t, stored.TotalAmount.Equal(stored.Items[0].Total.Add(stored.Items[1].Total)))
}

func TestPlaceOrder_NoFloatDrift(t *testing.T) {
	svc := NewOrderService(&fakeOrderRepo{}, newFakeCatalogRepo(7), "ISY", quietLogger())

	placed, err := svc.PlaceOrder(context.Background(), customerClaims(1), PlaceOrderInput{
		Items:           []CartItem{{ProductID: 7, Quantity: 2, Price: dec("9.99")}},
		ShippingAddress: "1 Main St",
		PaymentMethod:   "card",
	})
	require.NoError(t, err)
	assert.Equal(t, "19.98", placed.TotalAmount.StringFixed(2))
}

func TestPlaceOrder_ValidationFailures(t *testing.T) {
	svc := NewOrderService(&fakeOrderRepo{}, newFakeCatalogRepo(7), "ISY", quietLogger())

	valid := PlaceOrderInput{
		Items:           []CartItem{{ProductID: 7, Quantity: 1, Price: dec("9.99")}},
		ShippingAddress: "1 Main St",
		PaymentMethod:   "card",
	}

	cases := map[string]func(*PlaceOrderInput){
		"empty cart":        func(in *PlaceOrderInput) { in.Items = nil },
		"zero quantity":     func(in *PlaceOrderInput) { in.Items[0].Quantity = 0 },
		"negative quantity": func(in *PlaceOrderInput) { in.Items[0].Quantity = -1 },
		"negative price":    func(in *PlaceOrderInput) { in.Items[0].Price = dec("-1") },
		"zero price":        func(in *PlaceOrderInput) { in.Items[0].Price = dec("0") },
		"no address":        func(in *PlaceOrderInput) { in.ShippingAddress = "  " },
		"no payment method": func(in *PlaceOrderInput) { in.PaymentMethod = "" },
		"unknown product":   func(in *PlaceOrderInput) { in.Items[0].ProductID = 404 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := valid
			input.Items = append([]CartItem(nil), valid.Items...)
			mutate(&input)
			_, err := svc.PlaceOrder(context.Background(), customerClaims(1), input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestPlaceOrder_OrderNumberFormat(t *testing.T) {
	orders := &fakeOrderRepo{}
	svc := NewOrderService(orders, newFakeCatalogRepo(7), "ISY", quietLogger())

	placed, err := svc.PlaceOrder(context.Background(), customerClaims(1), PlaceOrderInput{
		Items:           []CartItem{{ProductID: 7, Quantity: 1, Price: dec("5")}},
		ShippingAddress: "1 Main St",
		PaymentMethod:   "card",
	})
	require.NoError(t, err)
	assert.Regexp(t, `^ISY\d+-[0-9A-F]{6}$`, placed.OrderNumber)
}

func TestPlaceOrder_RetriesOnOrderNumberCollision(t *testing.T) {
	orders := &fakeOrderRepo{failDuplicate: 2}
	svc := NewOrderService(orders, newFakeCatalogRepo(7), "ISY", quietLogger())

	placed, err := svc.PlaceOrder(context.Background(), customerClaims(1), PlaceOrderInput{
		Items:           []CartItem{{ProductID: 7, Quantity: 1, Price: dec("5")}},
		ShippingAddress: "1 Main St",
		PaymentMethod:   "card",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, placed.OrderNumber)
	assert.Len(t, orders.orders, 1)
}

func TestPlaceOrder_GivesUpAfterRepeatedCollisions(t *testing.T) {
	orders := &fakeOrderRepo{failDuplicate: 10}
	svc := NewOrderService(orders, newFakeCatalogRepo(7), "ISY", quietLogger())

	_, err := svc.PlaceOrder(context.Background(), customerClaims(1), PlaceOrderInput{
		Items:           []CartItem{{ProductID: 7, Quantity: 1, Price: dec("5")}},
		ShippingAddress: "1 Main St",
		PaymentMethod:   "card",
	})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestPlaceOrder_OpaquePersistenceError(t *testing.T) {
	orders := &fakeOrderRepo{failWith: fmt.Errorf("disk on fire")}
	svc := NewOrderService(orders, newFakeCatalogRepo(7), "ISY", quietLogger())

	_, err := svc.PlaceOrder(context.Background(), customerClaims(1), PlaceOrderInput{
		Items:           []CartItem{{ProductID: 7, Quantity: 1, Price: dec("5")}},
		ShippingAddress: "1 Main St",
		PaymentMethod:   "card",
	})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.NotContains(t, err.Error(), "disk on fire")
}

func TestListOrders_OnlyOwnOrders(t *testing.T) {
	orders := &fakeOrderRepo{}
	svc := NewOrderService(orders, newFakeCatalogRepo(7), "ISY", quietLogger())

	for _, userID := range []int64{1, 2, 1} {
		_, err := svc.PlaceOrder(context.Background(), customerClaims(userID), PlaceOrderInput{
			Items:           []CartItem{{ProductID: 7, Quantity: 1, Price: dec("5")}},
			ShippingAddress: "1 Main St",
			PaymentMethod:   "card",
		})
		require.NoError(t, err)
	}

	mine, err := svc.ListOrders(context.Background(), customerClaims(1))
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, order := range mine {
		assert.EqualValues(t, 1, order.UserID)
	}

	theirs, err := svc.ListOrders(context.Background(), customerClaims(2))
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}
