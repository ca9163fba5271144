package store

import (
	"context"
	"fmt"

	"platform-service/internal/models"

	"github.com/jmoiron/sqlx"
)

var (
	OrdersTable     = Table{Name: "orders", Key: "order_id"}
	OrderItemsTable = Table{Name: "order_items", Key: "id"}
	MenuItemsTable  = Table{Name: "menu_items", Key: "item_id"}
)

// CreateOrder inserts the order header and fills in the generated columns
func (t *Tx) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, restaurant_id, partner_id, total_amount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING order_id, status, timestamp`

	err := t.tx.GetContext(ctx, order, query,
		order.UserID, order.RestaurantID, order.PartnerID, order.TotalAmount, order.Status)
	return translateError(err)
}

// CreateOrderItems inserts all lines with one multi-row statement
func (t *Tx) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	_, err := t.tx.NamedExecContext(ctx,
		`INSERT INTO order_items (order_id, item_id, quantity) VALUES (:order_id, :item_id, :quantity)`,
		items)
	return translateError(err)
}

// MissingMenuItems returns the ids among ids that have no menu_items row
func (t *Tx) MissingMenuItems(ctx context.Context, ids []int64) ([]int64, error) {
	unique := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In("SELECT item_id FROM menu_items WHERE item_id IN (?)", unique)
	if err != nil {
		return nil, err
	}
	query = t.tx.Rebind(query)

	var found []int64
	if err := t.tx.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("failed to look up menu items: %w", translateError(err))
	}

	present := make(map[int64]bool, len(found))
	for _, id := range found {
		present[id] = true
	}

	var missing []int64
	for _, id := range unique {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// DeleteOrderItems removes every line of an order
func (t *Tx) DeleteOrderItems(ctx context.Context, orderID int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = $1", orderID)
	if err != nil {
		return 0, translateError(err)
	}
	return res.RowsAffected()
}

// DeleteOrder removes the order header
func (t *Tx) DeleteOrder(ctx context.Context, orderID int64) (int64, error) {
	return deleteByID(ctx, t.tx, OrdersTable, orderID)
}
