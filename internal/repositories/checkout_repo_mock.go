package repositories

import (
	"errors"
	"sync"
	"time"

	"cafedelicias/internal/models"
)

// MockCheckoutRepository is an in-memory implementation of
// CheckoutRepository backed by the mock product and order repositories.
// A single mutex serializes commits, which gives it the same guarantee as
// the transactional implementation: concurrent checkouts over-subscribing
// the same product cannot both succeed.
type MockCheckoutRepository struct {
	products *MockProductRepository
	orders   *MockOrderRepository
	mu       sync.Mutex
}

// NewMockCheckoutRepository creates a new instance of MockCheckoutRepository.
func NewMockCheckoutRepository(products *MockProductRepository, orders *MockOrderRepository) *MockCheckoutRepository {
	return &MockCheckoutRepository{
		products: products,
		orders:   orders,
	}
}

// Commit validates and persists the order, restoring any decremented stock
// if a later line fails.
func (r *MockCheckoutRepository) Commit(order *models.Order) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := make([]models.OrderLine, 0, len(order.Lines))
	var total int64

	for _, line := range order.Lines {
		if err := r.products.decrementStock(line.ProductID, line.Quantity); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				continue // vanished product, drop the line
			}
			// undo decrements from earlier lines
			for _, done := range kept {
				r.products.restoreStock(done.ProductID, done.Quantity)
			}
			return nil, err
		}
		kept = append(kept, line)
		total += line.Subtotal()
	}

	if len(kept) == 0 {
		return nil, models.ErrEmptyCart
	}

	committed := *order
	committed.Lines = kept
	committed.Total = total
	if committed.CreatedAt.IsZero() {
		committed.CreatedAt = time.Now()
	}
	r.orders.put(committed)
	return &committed, nil
}
