package repositories

import (
	"cafedelicias/internal/models"
)

// ProductRepository defines the interface for catalog data access.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	// GetByCategory returns up to limit products of a category, leaving out
	// excludeID. It backs the recommendation heuristic.
	GetByCategory(category string, excludeID string, limit int) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
