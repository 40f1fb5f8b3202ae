package service

import (
	"context"
	"testing"

	"storefront-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageRating(t *testing.T) {
	assert.Equal(t, 5.0, averageRating(nil), "no reviews defaults to full score")
	assert.Equal(t, 4.5, averageRating([]int{4, 5}))
	assert.Equal(t, 3.0, averageRating([]int{1, 3, 5}))
}

func TestSortByRating(t *testing.T) {
	views := []models.ProductView{
		{Product: models.Product{ID: "a"}, AverageRating: 5.0, ReviewCount: 0},
		{Product: models.Product{ID: "b"}, AverageRating: 3.5, ReviewCount: 2},
		{Product: models.Product{ID: "c"}, AverageRating: 5.0, ReviewCount: 0},
		{Product: models.Product{ID: "d"}, AverageRating: 4.8, ReviewCount: 5},
	}

	sortByRating(views)

	ids := make([]string, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}
	// Reviewed products first, descending; unreviewed after, original order kept.
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids)
}

func TestFilterByMinRating(t *testing.T) {
	views := []models.ProductView{
		{Product: models.Product{ID: "a"}, AverageRating: 5.0},
		{Product: models.Product{ID: "b"}, AverageRating: 3.5},
		{Product: models.Product{ID: "c"}, AverageRating: 4.2},
	}

	filtered := filterByMinRating(views, 4.0)

	require.Len(t, filtered, 2)
	assert.Equal(t, "a", filtered[0].ID)
	assert.Equal(t, "c", filtered[1].ID)
}

func TestQueryExpandsSubcategories(t *testing.T) {
	fs := newFakeStore()
	fs.subcategories["cat-1"] = []string{"cat-2", "cat-3"}

	svc := NewProductService(fs, nil, 50)

	_, err := svc.Query(context.Background(), ProductQuery{
		CategoryID:           "cat-1",
		IncludeSubcategories: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-1", "cat-2", "cat-3"}, fs.lastFilter.CategoryIDs)
	assert.Equal(t, 50, fs.lastFilter.Limit, "default limit applied")
}

func TestQueryComputesDerivedFields(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = models.Product{ID: "p1", Status: models.ProductStatusActive}
	fs.ratings["p1"] = []int{4, 5}
	fs.sizes["p1"] = []models.Size{{ID: "s1", ProductID: "p1", Name: "M"}}

	svc := NewProductService(fs, nil, 50)

	views, err := svc.Query(context.Background(), ProductQuery{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 4.5, views[0].AverageRating)
	assert.Equal(t, 2, views[0].ReviewCount)
	require.Len(t, views[0].Sizes, 1)
	assert.Equal(t, "M", views[0].Sizes[0].Name)
}

func TestQueryMinRatingFiltersComputedAverage(t *testing.T) {
	fs := newFakeStore()
	fs.products["low"] = models.Product{ID: "low", Status: models.ProductStatusActive}
	fs.products["high"] = models.Product{ID: "high", Status: models.ProductStatusActive}
	fs.ratings["low"] = []int{2}
	fs.ratings["high"] = []int{5}

	svc := NewProductService(fs, nil, 50)

	min := 4.0
	views, err := svc.Query(context.Background(), ProductQuery{MinRating: &min})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "high", views[0].ID)
}

func TestByIDsDropsUnknownAndInactive(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = models.Product{ID: "p1", Status: models.ProductStatusActive}
	fs.products["p2"] = models.Product{ID: "p2", Status: models.ProductStatusInactive}

	svc := NewProductService(fs, nil, 50)

	views, err := svc.ByIDs(context.Background(), []string{"p1", "p2", "ghost", "p1"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "p1", views[0].ID)
}

func TestByIDsUsesCache(t *testing.T) {
	fs := newFakeStore()
	fs.products["p1"] = models.Product{ID: "p1", Status: models.ProductStatusActive}
	cache := newFakeCache()

	svc := NewProductService(fs, cache, 50)

	views, err := svc.ByIDs(context.Background(), []string{"p1"})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Contains(t, cache.views, "p1", "miss is back-filled")

	// Deactivate in the store; the cached view still serves until invalidated.
	fs.products["p1"] = models.Product{ID: "p1", Status: models.ProductStatusInactive}
	views, err = svc.ByIDs(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Len(t, views, 1)
}
