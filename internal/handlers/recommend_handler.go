package handlers

import (
	"log"
	"strconv"

	"cafedelicias/internal/middleware"
	"cafedelicias/internal/services"

	"github.com/gofiber/fiber/v2"
)

// RecommendHandler serves product recommendations.
type RecommendHandler struct {
	service *services.RecommendService
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(service *services.RecommendService) *RecommendHandler {
	return &RecommendHandler{
		service: service,
	}
}

// RegisterRoutes registers the recommendation route with the Fiber app.
func (h *RecommendHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/recommendations", h.HandleRecommendations)
}

// HandleRecommendations returns suggested products for the authenticated
// user, based on their latest purchase.
func (h *RecommendHandler) HandleRecommendations(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.service.Recommend(userID, limit)
	if err != nil {
		log.Printf("Error computing recommendations for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not compute recommendations",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}
