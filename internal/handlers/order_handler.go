package handlers

import (
	"errors"
	"log"

	"cafedelicias/internal/middleware"
	"cafedelicias/internal/models"
	"cafedelicias/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// OrderHandler handles checkout and order retrieval.
type OrderHandler struct {
	service *services.CheckoutService
	store   *session.Store
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.CheckoutService, store *session.Store) *OrderHandler {
	return &OrderHandler{
		service: service,
		store:   store,
	}
}

// RegisterRoutes registers the order routes with the Fiber app. All of
// them require an authenticated user.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleListOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
}

// HandleCheckout converts the session cart into a committed order. On
// success the session cart is cleared; on any failure it is left exactly
// as it was so the user can retry.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	sess, err := h.store.Get(c)
	if err != nil {
		return sessionErrorResponse(c, err)
	}
	cart, err := loadCart(sess)
	if err != nil {
		return sessionErrorResponse(c, err)
	}

	order, err := h.service.Checkout(userID, cart)
	if err != nil {
		var insufficient *models.InsufficientStockError
		switch {
		case errors.Is(err, models.ErrUnauthenticated):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "You must be logged in to check out",
			})
		case errors.Is(err, models.ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Your cart is empty",
			})
		case errors.As(err, &insufficient):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message":    "Not enough stock of " + insufficient.Name,
				"product_id": insufficient.ProductID,
			})
		default:
			log.Printf("Error during checkout for user %s: %v", userID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not complete the purchase",
				"error":   err.Error(),
			})
		}
	}

	if err := clearCart(sess); err != nil {
		// The order is committed; a session hiccup must not make the
		// purchase look failed.
		log.Printf("Warning: failed to clear cart after checkout %s: %v", order.ID, err)
	}

	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleListOrders retrieves the authenticated user's orders.
func (h *OrderHandler) HandleListOrders(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	orders, err := h.service.ListOrders(userID)
	if err != nil {
		log.Printf("Error listing orders for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves one order, refusing access to orders that
// belong to somebody else.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	orderID := c.Params("id")

	order, err := h.service.GetOrder(orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Order not found",
			})
		case errors.Is(err, models.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "This order belongs to another user",
			})
		default:
			log.Printf("Error getting order %s: %v", orderID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not retrieve order",
				"error":   err.Error(),
			})
		}
	}
	return c.JSON(order)
}
