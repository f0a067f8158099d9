package services_test

import (
	"errors"
	"sync"
	"testing"

	"cafedelicias/internal/models"
	"cafedelicias/internal/repositories"
	"cafedelicias/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.OrderEventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderCreated(orderData map[string]interface{}) error {
	args := m.Called(orderData)
	return args.Error(0)
}

type checkoutFixture struct {
	products *repositories.MockProductRepository
	orders   *repositories.MockOrderRepository
	service  *services.CheckoutService
}

func newCheckoutFixture(t *testing.T, publisher services.OrderEventPublisher, seed ...models.Product) *checkoutFixture {
	t.Helper()
	products := repositories.NewMockProductRepository()
	for i := range seed {
		require.NoError(t, products.Create(&seed[i]))
	}
	orders := repositories.NewMockOrderRepository()
	checkoutRepo := repositories.NewMockCheckoutRepository(products, orders)
	return &checkoutFixture{
		products: products,
		orders:   orders,
		service:  services.NewCheckoutService(checkoutRepo, orders, publisher),
	}
}

func cartOf(items ...models.CartItem) models.Cart {
	cart := models.NewCart()
	for _, item := range items {
		cart.Items[item.ProductID] = item
	}
	return cart
}

func stockOf(t *testing.T, repo *repositories.MockProductRepository, id string) int {
	t.Helper()
	p, err := repo.GetByID(id)
	require.NoError(t, err)
	return p.Stock
}

func TestCheckoutService_Unauthenticated(t *testing.T) {
	f := newCheckoutFixture(t, nil,
		models.Product{ID: "a", Name: "Latte", Price: 2500, Stock: 5, Category: models.CategoryHot})

	cart := cartOf(models.CartItem{ProductID: "a", Name: "Latte", UnitPrice: 2500, Quantity: 1})
	order, err := f.service.Checkout("", cart)

	assert.Nil(t, order)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	assert.Equal(t, 5, stockOf(t, f.products, "a"), "failed checkout must not touch stock")
}

func TestCheckoutService_EmptyCart(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	order, err := f.service.Checkout("user-1", models.NewCart())

	assert.Nil(t, order)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestCheckoutService_Success(t *testing.T) {
	f := newCheckoutFixture(t, nil,
		models.Product{ID: "a", Name: "Espresso", Price: 1000, Stock: 5, Category: models.CategoryHot},
		models.Product{ID: "b", Name: "House Blend", Price: 3000, Stock: 1, Category: models.CategoryBeans})

	cart := cartOf(
		models.CartItem{ProductID: "a", Name: "Espresso", UnitPrice: 1000, Quantity: 2},
		models.CartItem{ProductID: "b", Name: "House Blend", UnitPrice: 3000, Quantity: 1})

	order, err := f.service.Checkout("user-1", cart)
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, int64(5000), order.Total)
	assert.Len(t, order.Lines, 2)
	assert.Equal(t, 3, stockOf(t, f.products, "a"))
	assert.Equal(t, 0, stockOf(t, f.products, "b"))

	// The total must equal the sum of line subtotals.
	var sum int64
	for _, line := range order.Lines {
		sum += line.Subtotal()
	}
	assert.Equal(t, order.Total, sum)

	// The order must be retrievable by its owner afterwards.
	stored, err := f.service.GetOrder(order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, order.Total, stored.Total)
}

func TestCheckoutService_InsufficientStock(t *testing.T) {
	f := newCheckoutFixture(t, nil,
		models.Product{ID: "a", Name: "Espresso", Price: 1000, Stock: 2, Category: models.CategoryHot})

	cart := cartOf(models.CartItem{ProductID: "a", Name: "Espresso", UnitPrice: 1000, Quantity: 10})

	order, err := f.service.Checkout("user-1", cart)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	var insufficient *models.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "a", insufficient.ProductID)
	assert.Equal(t, "Espresso", insufficient.Name)

	assert.Equal(t, 2, stockOf(t, f.products, "a"), "failed checkout must not alter stock")
	orders, err := f.orders.ListByUser("user-1")
	require.NoError(t, err)
	assert.Empty(t, orders, "no order may exist after a failed checkout")
}

func TestCheckoutService_RollsBackEarlierLines(t *testing.T) {
	// Product "a" sorts before "z": its decrement happens first and must be
	// undone when "z" cannot be covered.
	f := newCheckoutFixture(t, nil,
		models.Product{ID: "a", Name: "Espresso", Price: 1000, Stock: 5, Category: models.CategoryHot},
		models.Product{ID: "z", Name: "Brownie", Price: 1500, Stock: 1, Category: models.CategorySweets})

	cart := cartOf(
		models.CartItem{ProductID: "a", Name: "Espresso", UnitPrice: 1000, Quantity: 2},
		models.CartItem{ProductID: "z", Name: "Brownie", UnitPrice: 1500, Quantity: 3})

	order, err := f.service.Checkout("user-1", cart)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, models.ErrInsufficientStock)
	assert.Equal(t, 5, stockOf(t, f.products, "a"))
	assert.Equal(t, 1, stockOf(t, f.products, "z"))
}

func TestCheckoutService_PriceFrozenAtAddTime(t *testing.T) {
	f := newCheckoutFixture(t, nil,
		models.Product{ID: "latte", Name: "Latte", Price: 2000, Stock: 10, Category: models.CategoryHot})

	// Snapshot taken at 2000, then the catalog price rises.
	cart := cartOf(models.CartItem{ProductID: "latte", Name: "Latte", UnitPrice: 2000, Quantity: 1})
	p, err := f.products.GetByID("latte")
	require.NoError(t, err)
	p.Price = 2500
	require.NoError(t, f.products.Update(p))

	order, err := f.service.Checkout("user-1", cart)
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, int64(2000), order.Lines[0].UnitPrice)
	assert.Equal(t, int64(2000), order.Total)
}

func TestCheckoutService_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	f := newCheckoutFixture(t, nil,
		models.Product{ID: "a", Name: "Cold Brew", Price: 2800, Stock: 5, Category: models.CategoryIced})

	results := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cart := cartOf(models.CartItem{ProductID: "a", Name: "Cold Brew", UnitPrice: 2800, Quantity: 3})
			_, results[i] = f.service.Checkout("user-1", cart)
		}(i)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, models.ErrInsufficientStock)
			failed++
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one contending checkout may succeed")
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, stockOf(t, f.products, "a"))
}

func TestCheckoutService_SkipsVanishedProducts(t *testing.T) {
	f := newCheckoutFixture(t, nil,
		models.Product{ID: "a", Name: "Espresso", Price: 1000, Stock: 5, Category: models.CategoryHot})

	cart := cartOf(
		models.CartItem{ProductID: "a", Name: "Espresso", UnitPrice: 1000, Quantity: 1},
		models.CartItem{ProductID: "gone", Name: "Discontinued", UnitPrice: 9000, Quantity: 1})

	order, err := f.service.Checkout("user-1", cart)
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, "a", order.Lines[0].ProductID)
	assert.Equal(t, int64(1000), order.Total, "vanished entries must not count toward the total")
}

func TestCheckoutService_AllProductsVanished(t *testing.T) {
	f := newCheckoutFixture(t, nil)

	cart := cartOf(models.CartItem{ProductID: "gone", Name: "Discontinued", UnitPrice: 9000, Quantity: 1})

	order, err := f.service.Checkout("user-1", cart)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestCheckoutService_PublishesOrderCreatedEvent(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("PublishOrderCreated", mock.Anything).Return(nil).Once()

	f := newCheckoutFixture(t, publisher,
		models.Product{ID: "a", Name: "Espresso", Price: 1000, Stock: 5, Category: models.CategoryHot})

	cart := cartOf(models.CartItem{ProductID: "a", Name: "Espresso", UnitPrice: 1000, Quantity: 1})
	_, err := f.service.Checkout("user-1", cart)
	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestCheckoutService_PublishFailureDoesNotFailCheckout(t *testing.T) {
	publisher := new(MockPublisher)
	publisher.On("PublishOrderCreated", mock.Anything).Return(errors.New("broker down")).Once()

	f := newCheckoutFixture(t, publisher,
		models.Product{ID: "a", Name: "Espresso", Price: 1000, Stock: 5, Category: models.CategoryHot})

	cart := cartOf(models.CartItem{ProductID: "a", Name: "Espresso", UnitPrice: 1000, Quantity: 1})
	order, err := f.service.Checkout("user-1", cart)
	require.NoError(t, err)
	assert.NotNil(t, order)
	publisher.AssertExpectations(t)
}

func TestCheckoutService_GetOrderOwnership(t *testing.T) {
	f := newCheckoutFixture(t, nil,
		models.Product{ID: "a", Name: "Espresso", Price: 1000, Stock: 5, Category: models.CategoryHot})

	cart := cartOf(models.CartItem{ProductID: "a", Name: "Espresso", UnitPrice: 1000, Quantity: 1})
	order, err := f.service.Checkout("user-1", cart)
	require.NoError(t, err)

	_, err = f.service.GetOrder(order.ID, "user-2")
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = f.service.GetOrder("no-such-order", "user-1")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
