package services

import (
	"cafedelicias/internal/models"
	"cafedelicias/internal/repositories"
)

// CartService handles business logic for the session cart. Every operation
// takes the cart as an explicit value and returns the updated one; the
// caller owns persisting it back into the session store.
type CartService struct {
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		productRepo: productRepo,
	}
}

// AddToCart adds one unit of the product to the cart, capturing the current
// catalog price as the entry's snapshot on first add.
//
// The stock check here is advisory: it compares against the stock as last
// read, without reserving anything. Authoritative enforcement happens at
// checkout.
func (s *CartService) AddToCart(cart models.Cart, productID string) (models.Cart, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return cart, err
	}

	if cart.Items == nil {
		cart.Items = make(map[string]models.CartItem)
	}

	if item, ok := cart.Items[productID]; ok {
		if item.Quantity >= product.Stock {
			return cart, models.ErrOutOfStock
		}
		item.Quantity++
		cart.Items[productID] = item
		return cart, nil
	}

	if product.Stock <= 0 {
		return cart, models.ErrOutOfStock
	}
	cart.Items[productID] = models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  1,
	}
	return cart, nil
}

// RemoveFromCart deletes the entry for the product. Removing a product that
// is not in the cart is a no-op, not an error.
func (s *CartService) RemoveFromCart(cart models.Cart, productID string) models.Cart {
	delete(cart.Items, productID)
	return cart
}
