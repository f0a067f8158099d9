package repositories

import (
	"cafedelicias/internal/models"
)

// OrderRepository defines the interface for reading committed orders.
// Orders are only ever created through the CheckoutRepository, so there is
// no Create here.
type OrderRepository interface {
	GetByID(id string) (*models.Order, error)
	ListByUser(userID string) ([]models.Order, error)
	// GetLatestByUser returns the user's most recent order, or ErrNotFound
	// if they have never purchased anything.
	GetLatestByUser(userID string) (*models.Order, error)
}
