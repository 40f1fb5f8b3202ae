package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/service"
	"storefront-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// ProductService is the catalog surface the handlers need.
type ProductService interface {
	Query(ctx context.Context, q service.ProductQuery) ([]models.ProductView, error)
	ByIDs(ctx context.Context, ids []string) ([]models.ProductView, error)
}

// OrderService is the order surface the handlers need.
type OrderService interface {
	Create(ctx context.Context, req *service.CreateOrderRequest) (*models.OrderDetail, error)
	ByIDs(ctx context.Context, ids []string) ([]models.OrderDetail, error)
	All(ctx context.Context) ([]models.OrderDetail, error)
	UpdateStatus(ctx context.Context, orderID, status, cancelComment string) error
}

// ReviewService is the review surface the handlers need.
type ReviewService interface {
	List(ctx context.Context, productID string) ([]models.Review, error)
	Create(ctx context.Context, req *service.CreateReviewRequest) (*models.Review, error)
	Update(ctx context.Context, req *service.UpdateReviewRequest) (*models.Review, error)
}

// Handler contains HTTP handlers
type Handler struct {
	products ProductService
	orders   OrderService
	reviews  ReviewService
}

// NewHandler creates a new HTTP handler
func NewHandler(products ProductService, orders OrderService, reviews ReviewService) *Handler {
	return &Handler{
		products: products,
		orders:   orders,
		reviews:  reviews,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.POST("/products", h.productsByIDs)
		v1.GET("/products/:id/reviews", h.listReviews)
		v1.POST("/products/:id/reviews", h.createReview)
		v1.PUT("/products/:id/reviews", h.updateReview)

		v1.GET("/orders", h.listOrders)
		v1.POST("/orders", h.postOrders)
		v1.PATCH("/orders/:id/status", h.updateOrderStatus)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// fail maps service errors onto HTTP responses. Internals never leak.
func fail(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		util.GetLogger().Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// listProducts handles catalog queries
func (h *Handler) listProducts(c *gin.Context) {
	q := service.ProductQuery{
		CategoryID:           c.Query("categoryId"),
		IncludeSubcategories: c.Query("includeSubcategories") == "true",
		Search:               c.Query("search"),
		Seller:               c.Query("seller"),
		SortBy:               c.Query("sortBy"),
	}

	if raw := c.Query("categories"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				q.CategoryIDs = append(q.CategoryIDs, id)
			}
		}
	}

	var parseErr error
	q.MinPrice = parseFloatParam(c, "minPrice", &parseErr)
	q.MaxPrice = parseFloatParam(c, "maxPrice", &parseErr)
	q.MinRating = parseFloatParam(c, "minRating", &parseErr)
	if parseErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": parseErr.Error()})
		return
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		q.Limit = limit
	}

	views, err := h.products.Query(c.Request.Context(), q)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

func parseFloatParam(c *gin.Context, name string, parseErr *error) *float64 {
	raw := c.Query(name)
	if raw == "" || *parseErr != nil {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*parseErr = errors.New("invalid " + name)
		return nil
	}
	return &value
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

// productsByIDs handles the batch lookup backing cart/favorites hydration
func (h *Handler) productsByIDs(c *gin.Context) {
	var req idsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	views, err := h.products.ByIDs(c.Request.Context(), req.IDs)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

// listOrders handles the unfiltered operator view
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.All(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// orderPostRequest is the dual POST /orders payload: either an id lookup
// (sourced from the client-side order cookie) or a full creation payload.
type orderPostRequest struct {
	IDs []string `json:"ids"`
	service.CreateOrderRequest
}

// postOrders handles order lookup and order creation
func (h *Handler) postOrders(c *gin.Context) {
	var req orderPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if len(req.IDs) > 0 {
		orders, err := h.orders.ByIDs(c.Request.Context(), req.IDs)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
		return
	}

	order, err := h.orders.Create(c.Request.Context(), &req.CreateOrderRequest)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"order":   order,
		"message": "order created",
	})
}

type statusRequest struct {
	Status        string `json:"status"`
	CancelComment string `json:"cancelComment"`
}

// updateOrderStatus handles fulfillment status transitions
func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.CancelComment); err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// listReviews handles review listing for a product
func (h *Handler) listReviews(c *gin.Context) {
	reviews, err := h.reviews.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

// createReview handles review creation
func (h *Handler) createReview(c *gin.Context) {
	var req service.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.ProductID = c.Param("id")

	review, err := h.reviews.Create(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// updateReview handles review updates by review id
func (h *Handler) updateReview(c *gin.Context) {
	var req service.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.ProductID = c.Param("id")

	review, err := h.reviews.Update(c.Request.Context(), &req)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
