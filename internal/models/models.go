package models

import "time"

// Order is a food order header
type Order struct {
	OrderID      int64     `db:"order_id" json:"order_id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	RestaurantID int64     `db:"restaurant_id" json:"restaurant_id"`
	PartnerID    *int64    `db:"partner_id" json:"partner_id"`
	TotalAmount  float64   `db:"total_amount" json:"total_amount"`
	Status       string    `db:"status" json:"status"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
}

// OrderItem is one line of an order
type OrderItem struct {
	ID       int64 `db:"id" json:"id"`
	OrderID  int64 `db:"order_id" json:"order_id"`
	ItemID   int64 `db:"item_id" json:"item_id"`
	Quantity int   `db:"quantity" json:"quantity"`
}

// Defaults assigned at creation
const (
	OrderStatusPlaced     = "placed"
	RideStatusRequested   = "requested"
	PaymentStatusPending  = "pending"
	AvailabilityAvailable = "available"
	AvailabilityBusy      = "busy"
	DefaultItemQuantity   = 1
)
