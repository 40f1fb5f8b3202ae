package service

import (
	"context"
	"fmt"
	"strings"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minReviewTextLen = 10

// ReviewStore is the review data access the review service needs.
type ReviewStore interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetReviewsByProductID(ctx context.Context, productID string) ([]models.Review, error)
	GetReviewByID(ctx context.Context, id string) (*models.Review, error)
	GetReviewByProductAndClient(ctx context.Context, productID, clientName string) (*models.Review, error)
	CreateReview(ctx context.Context, review *models.Review) error
	UpdateReview(ctx context.Context, review *models.Review) error
}

// CacheInvalidator drops a product's cached view after its rating changed.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, productID string) error
}

// ReviewService handles review reads and writes.
type ReviewService struct {
	store  ReviewStore
	cache  CacheInvalidator
	logger *zap.Logger
}

// NewReviewService creates a new review service. cache may be nil.
func NewReviewService(reviewStore ReviewStore, cache CacheInvalidator) *ReviewService {
	return &ReviewService{
		store:  reviewStore,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// CreateReviewRequest is the review creation payload.
type CreateReviewRequest struct {
	ProductID  string `json:"-"`
	ClientName string `json:"clientName"`
	Text       string `json:"text"`
	Rating     int    `json:"rating"`
}

// UpdateReviewRequest is the review update payload. The review is located
// by its ID; text and rating are replaced.
type UpdateReviewRequest struct {
	ProductID string `json:"-"`
	ReviewID  string `json:"reviewId"`
	Text      string `json:"text"`
	Rating    int    `json:"rating"`
}

// List retrieves all reviews of a product.
func (s *ReviewService) List(ctx context.Context, productID string) ([]models.Review, error) {
	product, err := s.store.GetProductByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return s.store.GetReviewsByProductID(ctx, productID)
}

// Create creates a review, enforcing one review per (product, client name).
func (s *ReviewService) Create(ctx context.Context, req *CreateReviewRequest) (*models.Review, error) {
	clientName := strings.TrimSpace(req.ClientName)
	if err := validateReviewFields(clientName, req.Text, req.Rating); err != nil {
		return nil, err
	}

	product, err := s.store.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product == nil {
		return nil, ErrNotFound
	}

	existing, err := s.store.GetReviewByProductAndClient(ctx, req.ProductID, clientName)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing != nil {
		return nil, invalidf("a review by %s already exists (id %s); update it instead", clientName, existing.ID)
	}

	review := &models.Review{
		ID:         uuid.New().String(),
		ProductID:  req.ProductID,
		ClientName: clientName,
		Text:       strings.TrimSpace(req.Text),
		Rating:     req.Rating,
	}

	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	util.ReviewsCreatedTotal.Inc()
	s.invalidate(ctx, req.ProductID)
	return review, nil
}

// Update replaces the text and rating of an existing review.
func (s *ReviewService) Update(ctx context.Context, req *UpdateReviewRequest) (*models.Review, error) {
	if req.ReviewID == "" {
		return nil, invalidf("reviewId is required")
	}
	if err := validateReviewText(req.Text, req.Rating); err != nil {
		return nil, err
	}

	review, err := s.store.GetReviewByID(ctx, req.ReviewID)
	if err != nil {
		return nil, fmt.Errorf("failed to load review: %w", err)
	}
	if review == nil || review.ProductID != req.ProductID {
		return nil, ErrNotFound
	}

	review.Text = strings.TrimSpace(req.Text)
	review.Rating = req.Rating

	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.invalidate(ctx, req.ProductID)
	return review, nil
}

// invalidate drops the product's cached view; its average rating changed.
// Best-effort, the stale entry expires on its own anyway.
func (s *ReviewService) invalidate(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.Warn("Product cache invalidation failed",
			zap.String("product_id", productID),
			zap.Error(err))
	}
}

func validateReviewFields(clientName, text string, rating int) error {
	if clientName == "" {
		return invalidf("client name is required")
	}
	return validateReviewText(text, rating)
}

func validateReviewText(text string, rating int) error {
	if len(strings.TrimSpace(text)) < minReviewTextLen {
		return invalidf("review text must be at least %d characters", minReviewTextLen)
	}
	if rating < 1 || rating > 5 {
		return invalidf("rating must be between 1 and 5")
	}
	return nil
}
