package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and handlers.
var (
	ErrNotFound          = errors.New("not found")
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrUnauthenticated   = errors.New("authentication required")
	ErrForbidden         = errors.New("forbidden")
	ErrDuplicateUser     = errors.New("user already exists")
	ErrPasswordMismatch  = errors.New("passwords do not match")
)

// InsufficientStockError reports which product made a checkout fail so the
// caller can name it in the user-facing message. It matches
// errors.Is(err, ErrInsufficientStock).
type InsufficientStockError struct {
	ProductID string
	Name      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s (%s)", e.Name, e.ProductID)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
