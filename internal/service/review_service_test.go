package service

import (
	"context"
	"strings"
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReview(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = models.Product{ID: "p1", Status: models.ProductStatusActive}
	cache := newFakeCache()

	svc := NewReviewService(fs, cache)

	review, err := svc.Create(context.Background(), &CreateReviewRequest{
		ProductID:  "p1",
		ClientName: "Alice",
		Text:       "Fits perfectly, great fabric.",
		Rating:     5,
	})
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.NotEmpty(t, review.ID)
	assert.Equal(t, []string{"p1"}, cache.invalidated, "rating changed, view cache dropped")
}

func TestCreateReviewUniquePerClient(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = models.Product{ID: "p1", Status: models.ProductStatusActive}

	svc := NewReviewService(fs, nil)

	first, err := svc.Create(context.Background(), &CreateReviewRequest{
		ProductID:  "p1",
		ClientName: "Alice",
		Text:       "Fits perfectly, great fabric.",
		Rating:     5,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &CreateReviewRequest{
		ProductID:  "p1",
		ClientName: "Alice",
		Text:       "Changed my mind about this one.",
		Rating:     2,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), first.ID, "rejection references the existing review")

	// A different client may still review the same product.
	_, err = svc.Create(context.Background(), &CreateReviewRequest{
		ProductID:  "p1",
		ClientName: "Bob",
		Text:       "Arrived late but good quality.",
		Rating:     4,
	})
	assert.NoError(t, err)
}

func TestCreateReviewValidation(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = models.Product{ID: "p1", Status: models.ProductStatusActive}
	svc := NewReviewService(fs, nil)

	cases := []struct {
		name string
		req  CreateReviewRequest
	}{
		{"missing client name", CreateReviewRequest{ProductID: "p1", Text: "Long enough review text", Rating: 4}},
		{"short text", CreateReviewRequest{ProductID: "p1", ClientName: "Alice", Text: "Too short", Rating: 4}},
		{"rating too low", CreateReviewRequest{ProductID: "p1", ClientName: "Alice", Text: strings.Repeat("x", 20), Rating: 0}},
		{"rating too high", CreateReviewRequest{ProductID: "p1", ClientName: "Alice", Text: strings.Repeat("x", 20), Rating: 6}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := svc.Create(context.Background(), &req)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestCreateReviewUnknownProduct(t *testing.T) {
	svc := NewReviewService(newFakeStore(), nil)

	_, err := svc.Create(context.Background(), &CreateReviewRequest{
		ProductID:  "ghost",
		ClientName: "Alice",
		Text:       "Fits perfectly, great fabric.",
		Rating:     5,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReview(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = models.Product{ID: "p1", Status: models.ProductStatusActive}
	svc := NewReviewService(fs, nil)

	created, err := svc.Create(context.Background(), &CreateReviewRequest{
		ProductID:  "p1",
		ClientName: "Alice",
		Text:       "Fits perfectly, great fabric.",
		Rating:     5,
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), &UpdateReviewRequest{
		ProductID: "p1",
		ReviewID:  created.ID,
		Text:      "After a few washes the color faded.",
		Rating:    3,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Rating)

	// Wrong product for the review id.
	_, err = svc.Update(context.Background(), &UpdateReviewRequest{
		ProductID: "p2",
		ReviewID:  created.ID,
		Text:      "After a few washes the color faded.",
		Rating:    3,
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Update(context.Background(), &UpdateReviewRequest{
		ProductID: "p1",
		ReviewID:  "ghost",
		Text:      "After a few washes the color faded.",
		Rating:    3,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
