package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-service/internal/models"

	"github.com/jmoiron/sqlx"
)

// CreateOrderTx creates an order and all of its items in one transaction.
// Either everything commits or nothing does; a partially created order is
// never visible.
func (s *Store) CreateOrderTx(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	orderQuery := `
		INSERT INTO orders (id, customer_name, customer_phone, delivery_address, customer_comment, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	row := tx.QueryRowxContext(ctx, orderQuery,
		order.ID, order.CustomerName, order.CustomerPhone,
		order.DeliveryAddress, order.CustomerComment, order.Status)
	if err := row.Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price, size_id, color_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))`

	for i := range items {
		item := &items[i]
		if _, err := tx.ExecContext(ctx, itemQuery,
			item.ID, order.ID, item.ProductID, item.Quantity,
			item.Price, item.SizeID, item.ColorID); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderDetail retrieves an order with its items fully hydrated. Returns
// nil when the order does not exist.
func (s *Store) GetOrderDetail(ctx context.Context, orderID string) (*models.OrderDetail, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", orderID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	items, err := s.getOrderItems(ctx, []string{orderID})
	if err != nil {
		return nil, err
	}

	detail := &models.OrderDetail{Order: order, Items: items[orderID]}
	if detail.Items == nil {
		detail.Items = []models.OrderItem{}
	}
	detail.TotalAmount = detail.Total()
	return detail, nil
}

// GetOrdersByIDs retrieves orders with items by IDs. Missing IDs are absent
// from the result; callers decide the final ordering.
func (s *Store) GetOrdersByIDs(ctx context.Context, ids []string) ([]models.OrderDetail, error) {
	if len(ids) == 0 {
		return []models.OrderDetail{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM orders WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var orders []models.Order
	if err := s.db.SelectContext(ctx, &orders, query, args...); err != nil {
		return nil, err
	}

	return s.attachItems(ctx, orders)
}

// GetAllOrders retrieves every order with its items, newest first. Used by
// the operator view.
func (s *Store) GetAllOrders(ctx context.Context) ([]models.OrderDetail, error) {
	var orders []models.Order
	if err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC"); err != nil {
		return nil, err
	}

	return s.attachItems(ctx, orders)
}

// UpdateOrderStatus updates an order's fulfillment status. The cancel
// comment is only written for CANCELED.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status, cancelComment string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, cancel_comment = $2, updated_at = NOW() WHERE id = $3",
		status, cancelComment, orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) attachItems(ctx context.Context, orders []models.Order) ([]models.OrderDetail, error) {
	ids := make([]string, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
	}

	itemsByOrder, err := s.getOrderItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]models.OrderDetail, len(orders))
	for i, order := range orders {
		details[i] = models.OrderDetail{Order: order, Items: itemsByOrder[order.ID]}
		if details[i].Items == nil {
			details[i].Items = []models.OrderItem{}
		}
		details[i].TotalAmount = details[i].Total()
	}
	return details, nil
}

func (s *Store) getOrderItems(ctx context.Context, orderIDs []string) (map[string][]models.OrderItem, error) {
	result := make(map[string][]models.OrderItem)
	if len(orderIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT oi.id, oi.order_id, oi.product_id, p.name AS product_name,
		       oi.quantity, oi.price,
		       COALESCE(oi.size_id, '') AS size_id,
		       COALESCE(sz.name, '') AS size_name,
		       COALESCE(oi.color_id, '') AS color_id,
		       COALESCE(col.name, '') AS color_name
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		LEFT JOIN product_sizes sz ON sz.id = oi.size_id
		LEFT JOIN product_colors col ON col.id = oi.color_id
		WHERE oi.order_id IN (?)`, orderIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItem
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	for _, item := range items {
		result[item.OrderID] = append(result[item.OrderID], item)
	}
	return result, nil
}
