package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ProductStatusActive mirrors the backend catalog status for sellable items.
const ProductStatusActive = "ACTIVE"

// SizeOption is a selectable size of a product.
type SizeOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ColorOption is a selectable color of a product.
type ColorOption struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ColorCode string `json:"colorCode"`
}

// Product is the hydrated catalog view the stores work with. Everything
// here comes from the backend; the cookies only carry ids.
type Product struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Price         float64       `json:"price"`
	Images        []string      `json:"images"`
	CategoryID    string        `json:"categoryId"`
	CategoryName  string        `json:"categoryName"`
	SellerID      string        `json:"sellerId"`
	SellerName    string        `json:"sellerName"`
	Status        string        `json:"status"`
	AverageRating float64       `json:"averageRating"`
	ReviewCount   int           `json:"reviewCount"`
	Sizes         []SizeOption  `json:"sizes"`
	Colors        []ColorOption `json:"colors"`
}

// Active reports whether the product is still sellable.
func (p Product) Active() bool {
	return p.Status == ProductStatusActive
}

// Hydrator resolves cookie ids into current product data.
type Hydrator interface {
	Products(ctx context.Context, ids []string) ([]Product, error)
}

// HTTPHydrator hydrates against the storefront batch-lookup endpoint.
type HTTPHydrator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPHydrator creates a hydrator for the given API base URL,
// e.g. "http://localhost:8085". A nil client gets a sane default.
func NewHTTPHydrator(baseURL string, client *http.Client) *HTTPHydrator {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPHydrator{baseURL: baseURL, client: client}
}

// Products posts the deduplicated id list to POST /api/v1/products and
// returns whatever the backend still knows about. Unknown and inactive
// ids are simply absent from the result.
func (h *HTTPHydrator) Products(ctx context.Context, ids []string) ([]Product, error) {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(map[string][]string{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("encode hydration request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		h.baseURL+"/api/v1/products", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build hydration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hydration request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hydration request: unexpected status %d", resp.StatusCode)
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode hydration response: %w", err)
	}
	return products, nil
}

func dedupeIDs(ids []string) []string {
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
