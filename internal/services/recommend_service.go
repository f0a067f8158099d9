package services

import (
	"errors"
	"math/rand"

	"cafedelicias/internal/models"
	"cafedelicias/internal/repositories"
)

// DefaultRecommendations is how many products the advisor suggests when the
// caller does not ask for a specific count.
const DefaultRecommendations = 3

// RecommendService suggests products based on purchase history. It is
// strictly read-only.
type RecommendService struct {
	productRepo repositories.ProductRepository
	orderRepo   repositories.OrderRepository
}

// NewRecommendService creates a new RecommendService.
func NewRecommendService(productRepo repositories.ProductRepository, orderRepo repositories.OrderRepository) *RecommendService {
	return &RecommendService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// Recommend returns up to limit products for the user: other products from
// the category of the first line of their latest order, or a random sample
// of the catalog when they have no history or the category has nothing
// else to offer.
func (s *RecommendService) Recommend(userID string, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = DefaultRecommendations
	}

	latest, err := s.orderRepo.GetLatestByUser(userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return s.randomSample(limit)
		}
		return nil, err
	}
	if len(latest.Lines) == 0 {
		return s.randomSample(limit)
	}

	// The first line's category stands in for the user's taste.
	purchased, err := s.productRepo.GetByID(latest.Lines[0].ProductID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return s.randomSample(limit)
		}
		return nil, err
	}

	recs, err := s.productRepo.GetByCategory(purchased.Category, purchased.ID, limit)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return s.randomSample(limit)
	}
	return recs, nil
}

// randomSample picks up to limit products from the whole catalog.
func (s *RecommendService) randomSample(limit int) ([]models.Product, error) {
	products, err := s.productRepo.GetAll()
	if err != nil {
		return nil, err
	}
	if len(products) <= limit {
		return products, nil
	}
	rand.Shuffle(len(products), func(i, j int) {
		products[i], products[j] = products[j], products[i]
	})
	return products[:limit], nil
}
