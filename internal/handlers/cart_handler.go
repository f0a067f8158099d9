package handlers

import (
	"errors"
	"log"

	"cafedelicias/internal/models"
	"cafedelicias/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// CartHandler handles HTTP requests for the session cart. The cart itself
// is a value loaded from and saved back into the session around every
// operation; the handler owns that round trip.
type CartHandler struct {
	service *services.CartService
	store   *session.Store
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService, store *session.Store) *CartHandler {
	return &CartHandler{
		service: service,
		store:   store,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app. The cart is
// session-scoped, so no login is needed to fill it.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleViewCart)
	cartRoutes.Post("/items/:productID", h.HandleAddToCart)
	cartRoutes.Delete("/items/:productID", h.HandleRemoveFromCart)
}

// cartResponse is the cart snapshot returned by every cart endpoint.
type cartResponse struct {
	Items []models.CartItem `json:"items"`
	Total int64             `json:"total"`
}

func newCartResponse(cart models.Cart) cartResponse {
	return cartResponse{
		Items: cart.SortedItems(),
		Total: cart.Total(),
	}
}

// HandleViewCart returns the cart contents and the computed total.
func (h *CartHandler) HandleViewCart(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return sessionErrorResponse(c, err)
	}
	cart, err := loadCart(sess)
	if err != nil {
		return sessionErrorResponse(c, err)
	}
	return c.JSON(newCartResponse(cart))
}

// HandleAddToCart adds one unit of a product to the cart.
func (h *CartHandler) HandleAddToCart(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return sessionErrorResponse(c, err)
	}
	cart, err := loadCart(sess)
	if err != nil {
		return sessionErrorResponse(c, err)
	}

	productID := c.Params("productID")
	cart, err = h.service.AddToCart(cart, productID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Product not found",
			})
		case errors.Is(err, models.ErrOutOfStock):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "No more stock available for this product",
			})
		default:
			log.Printf("Error adding product %s to cart: %v", productID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not add product to cart",
				"error":   err.Error(),
			})
		}
	}

	if err := saveCart(sess, cart); err != nil {
		return sessionErrorResponse(c, err)
	}
	return c.JSON(newCartResponse(cart))
}

// HandleRemoveFromCart deletes the product's entry. Removing something that
// is not in the cart succeeds and returns the unchanged cart.
func (h *CartHandler) HandleRemoveFromCart(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return sessionErrorResponse(c, err)
	}
	cart, err := loadCart(sess)
	if err != nil {
		return sessionErrorResponse(c, err)
	}

	cart = h.service.RemoveFromCart(cart, c.Params("productID"))

	if err := saveCart(sess, cart); err != nil {
		return sessionErrorResponse(c, err)
	}
	return c.JSON(newCartResponse(cart))
}

func sessionErrorResponse(c *fiber.Ctx, err error) error {
	log.Printf("Session error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Session unavailable",
		"error":   err.Error(),
	})
}
