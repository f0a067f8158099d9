package repositories

import (
	"errors"
	"fmt"
	"log"

	"cafedelicias/internal/models"

	"gorm.io/gorm"
)

// GORMCheckoutRepository is a GORM implementation of CheckoutRepository.
//
// The stock check and the decrement for each product are one conditional
// UPDATE (stock = stock - n WHERE stock >= n), so two checkouts contending
// for the same product can never both decrement past zero: the database
// serializes the statement, and a zero rows-affected result means the
// remaining stock does not cover the line. The whole commit runs inside a
// single transaction, so a failed line rolls back every earlier decrement
// along with the order itself.
type GORMCheckoutRepository struct {
	db *gorm.DB
}

// NewGORMCheckoutRepository creates a new instance of GORMCheckoutRepository.
func NewGORMCheckoutRepository(db *gorm.DB) *GORMCheckoutRepository {
	return &GORMCheckoutRepository{
		db: db,
	}
}

// Commit validates and persists the order in one transaction.
func (r *GORMCheckoutRepository) Commit(order *models.Order) (*models.Order, error) {
	committed := *order

	err := r.db.Transaction(func(tx *gorm.DB) error {
		kept := make([]models.OrderLine, 0, len(order.Lines))
		var total int64

		for _, line := range order.Lines {
			var product models.Product
			if err := tx.Select("id", "name").First(&product, "id = ?", line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// The product disappeared from the catalog after it was
					// added to the cart; drop the line rather than failing
					// the whole purchase.
					log.Printf("checkout %s: skipping vanished product %s", order.ID, line.ProductID)
					continue
				}
				return fmt.Errorf("failed to read product %s: %w", line.ProductID, err)
			}

			res := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
				UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock for product %s: %w", line.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return &models.InsufficientStockError{ProductID: product.ID, Name: product.Name}
			}

			kept = append(kept, line)
			total += line.Subtotal()
		}

		if len(kept) == 0 {
			return models.ErrEmptyCart
		}

		committed.Lines = kept
		committed.Total = total
		if err := tx.Create(&committed).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &committed, nil
}
