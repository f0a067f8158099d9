package services

import (
	"fmt"
	"log"

	"cafedelicias/internal/models"
	"cafedelicias/internal/repositories"

	"github.com/google/uuid"
)

// OrderEventPublisher publishes order lifecycle events to the message
// broker. Satisfied by *rabbitmq.Client.
type OrderEventPublisher interface {
	PublishOrderCreated(orderData map[string]interface{}) error
}

// CheckoutService converts a session cart into a committed order. The
// durable consistency work (stock re-check, decrement, all-or-nothing
// visibility) lives in the CheckoutRepository; this service owns the
// contract checks, the order construction with frozen unit prices, and the
// post-commit event.
type CheckoutService struct {
	checkoutRepo repositories.CheckoutRepository
	orderRepo    repositories.OrderRepository
	mqClient     OrderEventPublisher
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(checkoutRepo repositories.CheckoutRepository, orderRepo repositories.OrderRepository, mqClient OrderEventPublisher) *CheckoutService {
	return &CheckoutService{
		checkoutRepo: checkoutRepo,
		orderRepo:    orderRepo,
		mqClient:     mqClient,
	}
}

// Checkout commits the cart as an order for the given user.
//
// It fails with ErrUnauthenticated for an anonymous caller and ErrEmptyCart
// for an empty cart, both without side effects. Each order line carries the
// unit price snapshot taken when the item entered the cart, not the live
// catalog price. Any line the catalog cannot cover aborts the whole
// operation with InsufficientStockError and leaves stock untouched; the
// caller re-presents the unchanged cart to the user.
func (s *CheckoutService) Checkout(userID string, cart models.Cart) (*models.Order, error) {
	if userID == "" {
		return nil, models.ErrUnauthenticated
	}
	if cart.IsEmpty() {
		return nil, models.ErrEmptyCart
	}

	order := &models.Order{
		ID:     uuid.New().String(),
		UserID: userID,
	}
	for _, item := range cart.SortedItems() {
		order.Lines = append(order.Lines, models.OrderLine{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	committed, err := s.checkoutRepo.Commit(order)
	if err != nil {
		return nil, err
	}

	s.publishOrderCreated(committed)
	return committed, nil
}

// publishOrderCreated emits the order.created event. Publishing is
// best-effort: a broker failure is logged, never surfaced to the buyer
// whose order already committed.
func (s *CheckoutService) publishOrderCreated(order *models.Order) {
	if s.mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}
	err := s.mqClient.PublishOrderCreated(map[string]interface{}{
		"orderID": order.ID,
		"userID":  order.UserID,
		"total":   order.Total,
		"lines":   len(order.Lines),
	})
	if err != nil {
		log.Printf("Warning: Failed to publish order created event for order %s: %v", order.ID, err)
	}
}

// GetOrder retrieves an order, enforcing that it belongs to the requesting
// user.
func (s *CheckoutService) GetOrder(orderID, requestingUserID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requestingUserID {
		return nil, fmt.Errorf("order %s: %w", orderID, models.ErrForbidden)
	}
	return order, nil
}

// ListOrders retrieves the user's orders, most recent first.
func (s *CheckoutService) ListOrders(userID string) ([]models.Order, error) {
	return s.orderRepo.ListByUser(userID)
}
