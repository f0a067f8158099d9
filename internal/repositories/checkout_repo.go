package repositories

import (
	"cafedelicias/internal/models"
)

// CheckoutRepository commits a checkout as one all-or-nothing unit: it
// re-validates stock for every line against the live catalog, decrements
// it, and persists the order with its lines. Either everything becomes
// visible or nothing does.
//
// The order passed in is a shell: ID, UserID and candidate Lines built from
// cart snapshots. Lines whose product no longer exists in the catalog are
// dropped. On success the returned order carries the surviving lines and
// the final total. On failure no stock is altered and no order exists; the
// error is InsufficientStockError when a line could not be covered, or
// ErrEmptyCart when every line referenced a vanished product.
type CheckoutRepository interface {
	Commit(order *models.Order) (*models.Order, error)
}
