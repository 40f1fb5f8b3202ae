package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

const productColumns = `
	p.id, p.name, p.description, p.price, p.images,
	p.category_id, c.name AS category_name,
	p.seller_id, sel.name AS seller_name,
	p.status, p.created_at`

const productJoins = `
	FROM products p
	JOIN categories c ON c.id = p.category_id
	JOIN sellers sel ON sel.id = p.seller_id`

// ProductFilter describes the database stage of a catalog query. Filters the
// database cannot express (minimum average rating, rating sort) are applied
// by the service layer afterwards.
type ProductFilter struct {
	CategoryIDs []string
	MinPrice    *float64
	MaxPrice    *float64
	Search      string
	Seller      string
	SortBy      string
	Limit       int
}

// Sort keys accepted by QueryProducts.
const (
	SortNewest    = "newest"
	SortOldest    = "oldest"
	SortPriceLow  = "price_low"
	SortPriceHigh = "price_high"
	SortRating    = "rating"
)

// QueryProducts retrieves ACTIVE products matching the filter. The rating
// sort cannot be resolved here and falls back to newest-first; the service
// layer re-sorts after computing averages.
func (s *Store) QueryProducts(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	query := "SELECT " + productColumns + productJoins + " WHERE p.status = ?"
	args := []interface{}{models.ProductStatusActive}

	if len(f.CategoryIDs) > 0 {
		query += " AND p.category_id IN (?)"
		args = append(args, f.CategoryIDs)
	}
	if f.MinPrice != nil {
		query += " AND p.price >= ?"
		args = append(args, *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query += " AND p.price <= ?"
		args = append(args, *f.MaxPrice)
	}
	if f.Search != "" {
		query += " AND (p.name ILIKE ? OR p.description ILIKE ?)"
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}
	if f.Seller != "" {
		query += " AND sel.name ILIKE ?"
		args = append(args, "%"+f.Seller+"%")
	}

	switch f.SortBy {
	case SortOldest:
		query += " ORDER BY p.created_at ASC"
	case SortPriceLow:
		query += " ORDER BY p.price ASC"
	case SortPriceHigh:
		query += " ORDER BY p.price DESC"
	default:
		query += " ORDER BY p.created_at DESC"
	}

	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	query, expanded, err := sqlx.In(query, args...)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, expanded...)
	return products, err
}

// GetActiveProductsByIDs retrieves ACTIVE products by IDs. Missing or
// inactive IDs are simply absent from the result.
func (s *Store) GetActiveProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}

	query, args, err := sqlx.In(
		"SELECT "+productColumns+productJoins+" WHERE p.status = ? AND p.id IN (?)",
		models.ProductStatusActive, ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var products []models.Product
	err = s.db.SelectContext(ctx, &products, query, args...)
	return products, err
}

// GetProductByID retrieves a product regardless of status. Returns nil when
// the product does not exist.
func (s *Store) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	err := s.db.GetContext(ctx, &product,
		s.db.Rebind("SELECT "+productColumns+productJoins+" WHERE p.id = ?"), id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetSubcategoryIDs returns the IDs of direct subcategories of a category.
func (s *Store) GetSubcategoryIDs(ctx context.Context, categoryID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids,
		"SELECT id FROM categories WHERE parent_id = $1", categoryID)
	return ids, err
}

// GetSizesByProductIDs retrieves sizes for multiple products keyed by product ID.
func (s *Store) GetSizesByProductIDs(ctx context.Context, ids []string) (map[string][]models.Size, error) {
	result := make(map[string][]models.Size)
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(
		"SELECT id, product_id, name FROM product_sizes WHERE product_id IN (?) ORDER BY name", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var sizes []models.Size
	if err := s.db.SelectContext(ctx, &sizes, query, args...); err != nil {
		return nil, err
	}
	for _, size := range sizes {
		result[size.ProductID] = append(result[size.ProductID], size)
	}
	return result, nil
}

// GetColorsByProductIDs retrieves colors for multiple products keyed by product ID.
func (s *Store) GetColorsByProductIDs(ctx context.Context, ids []string) (map[string][]models.Color, error) {
	result := make(map[string][]models.Color)
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(
		"SELECT id, product_id, name, color_code FROM product_colors WHERE product_id IN (?) ORDER BY name", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var colors []models.Color
	if err := s.db.SelectContext(ctx, &colors, query, args...); err != nil {
		return nil, err
	}
	for _, color := range colors {
		result[color.ProductID] = append(result[color.ProductID], color)
	}
	return result, nil
}

// GetRatingsByProductIDs retrieves review ratings for multiple products
// keyed by product ID.
func (s *Store) GetRatingsByProductIDs(ctx context.Context, ids []string) (map[string][]int, error) {
	result := make(map[string][]int)
	if len(ids) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(
		"SELECT product_id, rating FROM reviews WHERE product_id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var productID string
		var rating int
		if err := rows.Scan(&productID, &rating); err != nil {
			return nil, err
		}
		result[productID] = append(result[productID], rating)
	}
	return result, rows.Err()
}
