package models

import (
	"time"

	"github.com/lib/pq"
)

// Product statuses
const (
	ProductStatusActive   = "ACTIVE"
	ProductStatusInactive = "INACTIVE"
)

// Product represents a catalog product row joined with its category and seller names.
type Product struct {
	ID           string         `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Description  string         `db:"description" json:"description"`
	Price        float64        `db:"price" json:"price"`
	Images       pq.StringArray `db:"images" json:"images"`
	CategoryID   string         `db:"category_id" json:"categoryId"`
	CategoryName string         `db:"category_name" json:"categoryName"`
	SellerID     string         `db:"seller_id" json:"sellerId"`
	SellerName   string         `db:"seller_name" json:"sellerName"`
	Status       string         `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
}

// Size is a selectable product size.
type Size struct {
	ID        string `db:"id" json:"id"`
	ProductID string `db:"product_id" json:"-"`
	Name      string `db:"name" json:"name"`
}

// Color is a selectable product color.
type Color struct {
	ID        string `db:"id" json:"id"`
	ProductID string `db:"product_id" json:"-"`
	Name      string `db:"name" json:"name"`
	ColorCode string `db:"color_code" json:"colorCode"`
}

// ProductView is the API-facing product shape with derived fields.
type ProductView struct {
	Product
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
	Sizes         []Size  `json:"sizes"`
	Colors        []Color `json:"colors"`
}

// Category represents a product category; subcategories reference their
// parent through ParentID.
type Category struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	ParentID string `db:"parent_id" json:"parentId,omitempty"`
}

// Review is a customer review of a product. One review per
// (product, client name) pair.
type Review struct {
	ID         string    `db:"id" json:"id"`
	ProductID  string    `db:"product_id" json:"productId"`
	ClientName string    `db:"client_name" json:"clientName"`
	Text       string    `db:"text" json:"text"`
	Rating     int       `db:"rating" json:"rating"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Order statuses
const (
	OrderStatusCreated      = "CREATED"
	OrderStatusCourierWait  = "COURIER_WAIT"
	OrderStatusCourierPicked = "COURIER_PICKED"
	OrderStatusEnroute      = "ENROUTE"
	OrderStatusDelivered    = "DELIVERED"
	OrderStatusCanceled     = "CANCELED"
)

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusCreated, OrderStatusCourierWait, OrderStatusCourierPicked,
		OrderStatusEnroute, OrderStatusDelivered, OrderStatusCanceled:
		return true
	}
	return false
}

// Order represents a customer order.
type Order struct {
	ID              string    `db:"id" json:"id"`
	CustomerName    string    `db:"customer_name" json:"customerName"`
	CustomerPhone   string    `db:"customer_phone" json:"customerPhone"`
	DeliveryAddress string    `db:"delivery_address" json:"deliveryAddress"`
	CustomerComment string    `db:"customer_comment" json:"customerComment,omitempty"`
	Status          string    `db:"status" json:"status"`
	CancelComment   string    `db:"cancel_comment" json:"cancelComment,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// OrderItem is a line of an order. Price is snapshotted from the product at
// submission time and never tracks later price changes.
type OrderItem struct {
	ID          string  `db:"id" json:"id"`
	OrderID     string  `db:"order_id" json:"orderId"`
	ProductID   string  `db:"product_id" json:"productId"`
	ProductName string  `db:"product_name" json:"productName"`
	Quantity    int     `db:"quantity" json:"quantity"`
	Price       float64 `db:"price" json:"price"`
	SizeID      string  `db:"size_id" json:"sizeId,omitempty"`
	SizeName    string  `db:"size_name" json:"sizeName,omitempty"`
	ColorID     string  `db:"color_id" json:"colorId,omitempty"`
	ColorName   string  `db:"color_name" json:"colorName,omitempty"`
}

// OrderDetail is an order with its items and computed total.
type OrderDetail struct {
	Order
	TotalAmount float64     `db:"-" json:"totalAmount"`
	Items       []OrderItem `db:"-" json:"orderItems"`
}

// Total sums price times quantity over the order items.
func (d *OrderDetail) Total() float64 {
	var total float64
	for _, item := range d.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}
