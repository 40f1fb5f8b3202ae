package service

import (
	"context"
	"database/sql"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
)

// fakeStore is an in-memory stand-in for the sqlx store, implementing the
// narrow interfaces the services consume.
type fakeStore struct {
	products      map[string]models.Product
	subcategories map[string][]string
	sizes         map[string][]models.Size
	colors        map[string][]models.Color
	ratings       map[string][]int
	reviews       map[string]models.Review
	orders        map[string]models.OrderDetail

	lastFilter       store.ProductFilter
	createOrderCalls int
	createdOrder     *models.Order
	createdItems     []models.OrderItem
	statusUpdates    map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:      map[string]models.Product{},
		subcategories: map[string][]string{},
		sizes:         map[string][]models.Size{},
		colors:        map[string][]models.Color{},
		ratings:       map[string][]int{},
		reviews:       map[string]models.Review{},
		orders:        map[string]models.OrderDetail{},
		statusUpdates: map[string]string{},
	}
}

func (f *fakeStore) QueryProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	f.lastFilter = filter
	var out []models.Product
	for _, p := range f.products {
		if p.Status == models.ProductStatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetActiveProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok && p.Status == models.ProductStatusActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeStore) GetSubcategoryIDs(ctx context.Context, categoryID string) ([]string, error) {
	return f.subcategories[categoryID], nil
}

func (f *fakeStore) GetSizesByProductIDs(ctx context.Context, ids []string) (map[string][]models.Size, error) {
	return f.sizes, nil
}

func (f *fakeStore) GetColorsByProductIDs(ctx context.Context, ids []string) (map[string][]models.Color, error) {
	return f.colors, nil
}

func (f *fakeStore) GetRatingsByProductIDs(ctx context.Context, ids []string) (map[string][]int, error) {
	return f.ratings, nil
}

func (f *fakeStore) CreateOrderTx(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	f.createOrderCalls++
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.createdOrder = order
	f.createdItems = items

	detail := models.OrderDetail{Order: *order, Items: make([]models.OrderItem, len(items))}
	copy(detail.Items, items)
	for i := range detail.Items {
		if p, ok := f.products[detail.Items[i].ProductID]; ok {
			detail.Items[i].ProductName = p.Name
		}
	}
	detail.TotalAmount = detail.Total()
	f.orders[order.ID] = detail
	return nil
}

func (f *fakeStore) GetOrderDetail(ctx context.Context, orderID string) (*models.OrderDetail, error) {
	if d, ok := f.orders[orderID]; ok {
		return &d, nil
	}
	return nil, nil
}

func (f *fakeStore) GetOrdersByIDs(ctx context.Context, ids []string) ([]models.OrderDetail, error) {
	var out []models.OrderDetail
	// Map iteration order is deliberately unordered, like a database IN query.
	for _, d := range f.orders {
		for _, id := range ids {
			if d.ID == id {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) GetAllOrders(ctx context.Context) ([]models.OrderDetail, error) {
	var out []models.OrderDetail
	for _, d := range f.orders {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, orderID, status, cancelComment string) error {
	if _, ok := f.orders[orderID]; !ok {
		return sql.ErrNoRows
	}
	f.statusUpdates[orderID] = status
	return nil
}

func (f *fakeStore) GetReviewsByProductID(ctx context.Context, productID string) ([]models.Review, error) {
	var out []models.Review
	for _, r := range f.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetReviewByID(ctx context.Context, id string) (*models.Review, error) {
	if r, ok := f.reviews[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (f *fakeStore) GetReviewByProductAndClient(ctx context.Context, productID, clientName string) (*models.Review, error) {
	for _, r := range f.reviews {
		if r.ProductID == productID && r.ClientName == clientName {
			review := r
			return &review, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateReview(ctx context.Context, review *models.Review) error {
	review.CreatedAt = time.Now()
	f.reviews[review.ID] = *review
	return nil
}

func (f *fakeStore) UpdateReview(ctx context.Context, review *models.Review) error {
	f.reviews[review.ID] = *review
	return nil
}

// fakePublisher records published events.
type fakePublisher struct {
	events  []*models.OrderCreatedEvent
	failErr error
}

func (f *fakePublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.events = append(f.events, event)
	return nil
}

// fakeCache is an in-memory view cache.
type fakeCache struct {
	views       map[string]models.ProductView
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{views: map[string]models.ProductView{}}
}

func (f *fakeCache) GetViews(ctx context.Context, ids []string) (map[string]models.ProductView, error) {
	out := map[string]models.ProductView{}
	for _, id := range ids {
		if v, ok := f.views[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

func (f *fakeCache) SetViews(ctx context.Context, views []models.ProductView) error {
	for _, v := range views {
		f.views[v.ID] = v
	}
	return nil
}

func (f *fakeCache) Invalidate(ctx context.Context, productID string) error {
	f.invalidated = append(f.invalidated, productID)
	delete(f.views, productID)
	return nil
}
