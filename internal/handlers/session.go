package handlers

import (
	"encoding/json"
	"fmt"

	"cafedelicias/internal/models"

	"github.com/gofiber/fiber/v2/middleware/session"
)

// cartSessionKey is where the serialized cart lives inside the session.
const cartSessionKey = "cart"

// loadCart reads the cart out of the session, returning an empty cart for
// a fresh session.
func loadCart(sess *session.Session) (models.Cart, error) {
	raw := sess.Get(cartSessionKey)
	if raw == nil {
		return models.NewCart(), nil
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return models.NewCart(), nil
	}
	var cart models.Cart
	if err := json.Unmarshal([]byte(s), &cart); err != nil {
		return models.Cart{}, fmt.Errorf("failed to decode session cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = make(map[string]models.CartItem)
	}
	return cart, nil
}

// saveCart writes the cart back into the session as one unit.
func saveCart(sess *session.Session, cart models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode session cart: %w", err)
	}
	sess.Set(cartSessionKey, string(data))
	if err := sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// clearCart drops the cart from the session after a successful checkout.
func clearCart(sess *session.Session) error {
	sess.Delete(cartSessionKey)
	if err := sess.Save(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
