package models

import "time"

// Event types
const (
	EventTypeRecordCreated = "RECORD_CREATED"
	EventTypeRecordDeleted = "RECORD_DELETED"
	EventTypeOrderPlaced   = "ORDER_PLACED"
	EventTypeOrderDeleted  = "ORDER_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordCreatedEvent published after a resource row is committed
type RecordCreatedEvent struct {
	BaseEvent
	Resource string                 `json:"resource"`
	ID       int64                  `json:"id"`
	Data     map[string]interface{} `json:"data"`
}

// RecordDeletedEvent published after a resource row is removed
type RecordDeletedEvent struct {
	BaseEvent
	Resource string `json:"resource"`
	ID       int64  `json:"id"`
}

// OrderPlacedEvent published after an order and its lines are committed
type OrderPlacedEvent struct {
	BaseEvent
	OrderID      int64           `json:"order_id"`
	UserID       int64           `json:"user_id"`
	RestaurantID int64           `json:"restaurant_id"`
	TotalAmount  float64         `json:"total_amount"`
	Items        []OrderItemData `json:"items"`
}

// OrderDeletedEvent published after an order and its lines are removed
type OrderDeletedEvent struct {
	BaseEvent
	OrderID      int64 `json:"order_id"`
	ItemsRemoved int64 `json:"items_removed"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}
