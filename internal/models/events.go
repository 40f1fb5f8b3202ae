package models

import "time"

// Event types
const (
	EventTypeOrderCreated = "ORDER_CREATED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent is published after an order transaction commits. It
// carries everything the notification pipeline needs so consumers never
// have to read the database.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID         string          `json:"order_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	DeliveryAddress string          `json:"delivery_address"`
	CustomerComment string          `json:"customer_comment,omitempty"`
	TotalAmount     float64         `json:"total_amount"`
	Items           []OrderItemData `json:"items"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	SizeName    string  `json:"size_name,omitempty"`
	ColorName   string  `json:"color_name,omitempty"`
}
