package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore is the order data access the order service needs.
type OrderStore interface {
	GetActiveProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	CreateOrderTx(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrderDetail(ctx context.Context, orderID string) (*models.OrderDetail, error)
	GetOrdersByIDs(ctx context.Context, ids []string) ([]models.OrderDetail, error)
	GetAllOrders(ctx context.Context) ([]models.OrderDetail, error)
	UpdateOrderStatus(ctx context.Context, orderID, status, cancelComment string) error
}

// OrderPublisher publishes the post-commit order notification event.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
}

// OrderService handles order submission and lookup.
type OrderService struct {
	store     OrderStore
	publisher OrderPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service. publisher may be nil, in
// which case no notification event is emitted.
func NewOrderService(orderStore OrderStore, publisher OrderPublisher) *OrderService {
	return &OrderService{
		store:     orderStore,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// CartItemRequest is one line of the submitted cart snapshot. Any price the
// client attaches is ignored; the server snapshots its own.
type CartItemRequest struct {
	ProductID       string `json:"productId"`
	Quantity        int    `json:"quantity"`
	SelectedSizeID  string `json:"selectedSizeId,omitempty"`
	SelectedColorID string `json:"selectedColorId,omitempty"`
}

// CreateOrderRequest is the order submission payload.
type CreateOrderRequest struct {
	CustomerName    string            `json:"customerName"`
	CustomerPhone   string            `json:"customerPhone"`
	DeliveryAddress string            `json:"deliveryAddress"`
	CustomerComment string            `json:"customerComment,omitempty"`
	CartItems       []CartItemRequest `json:"cartItems"`
}

// Create validates the submission, re-checks every product against the
// ACTIVE catalog, and persists the order with all items in one transaction.
// Item prices are snapshotted from the current product rows. The
// notification event is published only after commit and never fails the
// order.
func (s *OrderService) Create(ctx context.Context, req *CreateOrderRequest) (*models.OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Create")
	defer span.End()

	if err := validateOrderRequest(req); err != nil {
		util.OrdersRejectedTotal.WithLabelValues("invalid_input").Inc()
		return nil, err
	}

	productIDs := make([]string, 0, len(req.CartItems))
	for _, item := range req.CartItems {
		productIDs = append(productIDs, item.ProductID)
	}
	productIDs = dedupe(productIDs)

	products, err := s.store.GetActiveProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to verify products: %w", err)
	}
	// All-or-nothing: one unavailable product rejects the whole order
	// rather than silently dropping lines.
	if len(products) != len(productIDs) {
		util.OrdersRejectedTotal.WithLabelValues("unavailable_products").Inc()
		return nil, invalidf("some products are no longer available")
	}

	productMap := make(map[string]*models.Product, len(products))
	for i := range products {
		productMap[products[i].ID] = &products[i]
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		CustomerComment: strings.TrimSpace(req.CustomerComment),
		Status:          models.OrderStatusCreated,
	}

	items := make([]models.OrderItem, len(req.CartItems))
	for i, item := range req.CartItems {
		product := productMap[item.ProductID]
		items[i] = models.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
			SizeID:    item.SelectedSizeID,
			ColorID:   item.SelectedColorID,
		}
	}

	if err := s.store.CreateOrderTx(ctx, order, items); err != nil {
		util.OrdersRejectedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created", zap.String("order_id", order.ID))

	detail, err := s.store.GetOrderDetail(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created order: %w", err)
	}

	s.publishCreated(ctx, detail)

	return detail, nil
}

// publishCreated emits the notification event. Best-effort: failures are
// logged and the order stands.
func (s *OrderService) publishCreated(ctx context.Context, detail *models.OrderDetail) {
	if s.publisher == nil {
		return
	}

	eventItems := make([]models.OrderItemData, len(detail.Items))
	for i, item := range detail.Items {
		eventItems[i] = models.OrderItemData{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
			SizeName:    item.SizeName,
			ColorName:   item.ColorName,
		}
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:         detail.ID,
		CustomerName:    detail.CustomerName,
		CustomerPhone:   detail.CustomerPhone,
		DeliveryAddress: detail.DeliveryAddress,
		CustomerComment: detail.CustomerComment,
		TotalAmount:     detail.TotalAmount,
		Items:           eventItems,
	}

	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event",
			zap.String("order_id", detail.ID),
			zap.Error(err))
	}
}

func validateOrderRequest(req *CreateOrderRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return invalidf("customer name is required")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return invalidf("customer phone is required")
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return invalidf("delivery address is required")
	}
	if len(req.CartItems) == 0 {
		return invalidf("cart is empty")
	}
	for _, item := range req.CartItems {
		if item.ProductID == "" {
			return invalidf("cart item is missing a product id")
		}
		if item.Quantity < 1 {
			return invalidf("cart item quantity must be at least 1")
		}
	}
	return nil
}

// ByIDs retrieves orders for the given IDs, preserving the caller-supplied
// order. IDs that resolve to nothing are dropped.
func (s *OrderService) ByIDs(ctx context.Context, ids []string) ([]models.OrderDetail, error) {
	ids = dedupe(ids)

	details, err := s.store.GetOrdersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("order lookup failed: %w", err)
	}

	byID := make(map[string]models.OrderDetail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	ordered := make([]models.OrderDetail, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			ordered = append(ordered, d)
		}
	}
	return ordered, nil
}

// All retrieves every order for the operator view.
func (s *OrderService) All(ctx context.Context) ([]models.OrderDetail, error) {
	return s.store.GetAllOrders(ctx)
}

// UpdateStatus applies a fulfillment status transition. The cancel comment
// is only kept for CANCELED.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status, cancelComment string) error {
	if !models.ValidOrderStatus(status) {
		return invalidf("unknown order status: %s", status)
	}
	if status != models.OrderStatusCanceled {
		cancelComment = ""
	}

	err := s.store.UpdateOrderStatus(ctx, orderID, status, cancelComment)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
