package store

import (
	"context"
	"database/sql"

	"storefront-service/internal/models"
)

// GetReviewsByProductID retrieves all reviews for a product, newest first.
func (s *Store) GetReviewsByProductID(ctx context.Context, productID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.SelectContext(ctx, &reviews,
		"SELECT * FROM reviews WHERE product_id = $1 ORDER BY created_at DESC", productID)
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, err
}

// GetReviewByID retrieves a review by ID. Returns nil when absent.
func (s *Store) GetReviewByID(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	err := s.db.GetContext(ctx, &review, "SELECT * FROM reviews WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetReviewByProductAndClient retrieves the review a client left on a
// product, if any. Backs the one-review-per-client rule.
func (s *Store) GetReviewByProductAndClient(ctx context.Context, productID, clientName string) (*models.Review, error) {
	var review models.Review
	err := s.db.GetContext(ctx, &review,
		"SELECT * FROM reviews WHERE product_id = $1 AND client_name = $2", productID, clientName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// CreateReview creates a new review
func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (id, product_id, client_name, text, rating)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return s.db.GetContext(ctx, &review.CreatedAt, query,
		review.ID, review.ProductID, review.ClientName, review.Text, review.Rating)
}

// UpdateReview updates the text and rating of an existing review.
func (s *Store) UpdateReview(ctx context.Context, review *models.Review) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE reviews SET text = $1, rating = $2 WHERE id = $3",
		review.Text, review.Rating, review.ID)
	return err
}
