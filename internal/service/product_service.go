package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// defaultRating is reported for products without any reviews yet. A UX
// choice: an unreviewed product shows a full score rather than zero.
const defaultRating = 5.0

// ProductStore is the catalog data access the product service needs.
type ProductStore interface {
	QueryProducts(ctx context.Context, f store.ProductFilter) ([]models.Product, error)
	GetActiveProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	GetSubcategoryIDs(ctx context.Context, categoryID string) ([]string, error)
	GetSizesByProductIDs(ctx context.Context, ids []string) (map[string][]models.Size, error)
	GetColorsByProductIDs(ctx context.Context, ids []string) (map[string][]models.Color, error)
	GetRatingsByProductIDs(ctx context.Context, ids []string) (map[string][]int, error)
}

// ViewCache caches assembled product views.
type ViewCache interface {
	GetViews(ctx context.Context, ids []string) (map[string]models.ProductView, error)
	SetViews(ctx context.Context, views []models.ProductView) error
	Invalidate(ctx context.Context, productID string) error
}

// ProductQuery are the caller-facing catalog query parameters.
type ProductQuery struct {
	CategoryID           string
	IncludeSubcategories bool
	CategoryIDs          []string
	MinPrice             *float64
	MaxPrice             *float64
	MinRating            *float64
	Search               string
	Seller               string
	SortBy               string
	Limit                int
}

// ProductService runs the two-stage catalog query pipeline: a database
// stage for everything the store can filter and sort, then an application
// stage for the derived rating field, the minimum-rating filter and the
// rating sort.
type ProductService struct {
	store        ProductStore
	cache        ViewCache
	defaultLimit int
	logger       *zap.Logger
}

// NewProductService creates a new product service. cache may be nil.
func NewProductService(productStore ProductStore, cache ViewCache, defaultLimit int) *ProductService {
	return &ProductService{
		store:        productStore,
		cache:        cache,
		defaultLimit: defaultLimit,
		logger:       util.GetLogger(),
	}
}

// Query retrieves catalog products matching the query.
func (s *ProductService) Query(ctx context.Context, q ProductQuery) ([]models.ProductView, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.Query")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ProductQueryDuration.Observe(time.Since(start).Seconds())
	}()

	categoryIDs := q.CategoryIDs
	if q.CategoryID != "" {
		categoryIDs = append(categoryIDs, q.CategoryID)
		if q.IncludeSubcategories {
			subIDs, err := s.store.GetSubcategoryIDs(ctx, q.CategoryID)
			if err != nil {
				return nil, fmt.Errorf("failed to expand subcategories: %w", err)
			}
			categoryIDs = append(categoryIDs, subIDs...)
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	products, err := s.store.QueryProducts(ctx, store.ProductFilter{
		CategoryIDs: categoryIDs,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
		Search:      q.Search,
		Seller:      q.Seller,
		SortBy:      q.SortBy,
		Limit:       limit,
	})
	if err != nil {
		return nil, fmt.Errorf("product query failed: %w", err)
	}

	views, err := s.buildViews(ctx, products)
	if err != nil {
		return nil, err
	}

	if q.MinRating != nil {
		views = filterByMinRating(views, *q.MinRating)
	}
	if q.SortBy == store.SortRating {
		sortByRating(views)
	}

	return views, nil
}

// ByIDs retrieves ACTIVE products for an explicit ID list, unordered. IDs
// that resolve to nothing are dropped. This backs cart and favorites
// hydration and is served from the cache when possible.
func (s *ProductService) ByIDs(ctx context.Context, ids []string) ([]models.ProductView, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.ByIDs")
	defer span.End()

	ids = dedupe(ids)
	result := make([]models.ProductView, 0, len(ids))

	cached := map[string]models.ProductView{}
	if s.cache != nil {
		var err error
		cached, err = s.cache.GetViews(ctx, ids)
		if err != nil {
			s.logger.Warn("Product cache read failed", zap.Error(err))
			cached = map[string]models.ProductView{}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if view, ok := cached[id]; ok {
			util.ProductCacheHitsTotal.Inc()
			result = append(result, view)
		} else {
			util.ProductCacheMissesTotal.Inc()
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		products, err := s.store.GetActiveProductsByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("product batch lookup failed: %w", err)
		}

		fresh, err := s.buildViews(ctx, products)
		if err != nil {
			return nil, err
		}

		if s.cache != nil && len(fresh) > 0 {
			if err := s.cache.SetViews(ctx, fresh); err != nil {
				s.logger.Warn("Product cache write failed", zap.Error(err))
			}
		}

		result = append(result, fresh...)
	}

	return result, nil
}

// buildViews assembles view models: sizes, colors and the computed rating.
func (s *ProductService) buildViews(ctx context.Context, products []models.Product) ([]models.ProductView, error) {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	sizes, err := s.store.GetSizesByProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load sizes: %w", err)
	}
	colors, err := s.store.GetColorsByProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load colors: %w", err)
	}
	ratings, err := s.store.GetRatingsByProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	views := make([]models.ProductView, len(products))
	for i, p := range products {
		views[i] = models.ProductView{
			Product:       p,
			AverageRating: averageRating(ratings[p.ID]),
			ReviewCount:   len(ratings[p.ID]),
			Sizes:         sizes[p.ID],
			Colors:        colors[p.ID],
		}
		if views[i].Sizes == nil {
			views[i].Sizes = []models.Size{}
		}
		if views[i].Colors == nil {
			views[i].Colors = []models.Color{}
		}
	}
	return views, nil
}

// averageRating is the mean of the review ratings, or the default for a
// product without reviews.
func averageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return defaultRating
	}
	var sum int
	for _, r := range ratings {
		sum += r
	}
	return float64(sum) / float64(len(ratings))
}

// ratedAverage is the sort key for the rating sort: the raw average, zero
// when there are no reviews. The display default never participates in
// ordering, otherwise unreviewed products would outrank well-reviewed ones.
func ratedAverage(v models.ProductView) float64 {
	if v.ReviewCount == 0 {
		return 0
	}
	return v.AverageRating
}

func filterByMinRating(views []models.ProductView, min float64) []models.ProductView {
	filtered := views[:0]
	for _, v := range views {
		if v.AverageRating >= min {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// sortByRating orders reviewed products first, descending by average, with
// unreviewed products after them. Ties keep their original relative order.
func sortByRating(views []models.ProductView) {
	sort.SliceStable(views, func(i, j int) bool {
		return ratedAverage(views[i]) > ratedAverage(views[j])
	})
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
