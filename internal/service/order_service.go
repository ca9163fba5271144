package service

import (
	"context"
	"fmt"

	"platform-service/internal/apperror"
	"platform-service/internal/models"
	"platform-service/internal/store"
	"platform-service/internal/util"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
)

// OrderService handles the two multi-statement operations: placing an
// order with its lines and deleting an order with its lines.
type OrderService struct {
	store  *store.Store
	events EventPublisher
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, events EventPublisher) *OrderService {
	return &OrderService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	UserID       int64              `json:"user_id" binding:"required"`
	RestaurantID int64              `json:"restaurant_id" binding:"required"`
	PartnerID    *int64             `json:"partner_id"`
	TotalAmount  *float64           `json:"total_amount" binding:"required"`
	Status       string             `json:"status"`
	Items        []OrderItemRequest `json:"items" binding:"dive"`
}

// OrderItemRequest represents a line in an order
type OrderItemRequest struct {
	ItemID   int64 `json:"item_id" binding:"required"`
	Quantity *int  `json:"quantity"`
}

// CreateOrder inserts the order header and every line in one
// transaction. Nothing is persisted unless all of it is.
func (s *OrderService) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, []models.OrderItem, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	if err := validateOrderRequest(req); err != nil {
		s.recordFailure(err)
		return nil, nil, err
	}

	order := &models.Order{
		UserID:       req.UserID,
		RestaurantID: req.RestaurantID,
		PartnerID:    req.PartnerID,
		TotalAmount:  *req.TotalAmount,
		Status:       req.Status,
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPlaced
	}

	items := make([]models.OrderItem, len(req.Items))
	itemIDs := make([]int64, len(req.Items))
	for i, line := range req.Items {
		quantity := models.DefaultItemQuantity
		if line.Quantity != nil {
			quantity = *line.Quantity
		}
		items[i] = models.OrderItem{ItemID: line.ItemID, Quantity: quantity}
		itemIDs[i] = line.ItemID
	}

	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		missing, err := tx.MissingMenuItems(ctx, itemIDs)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return apperror.Validation("unknown menu item ids %v", missing)
		}

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.OrderID
		}
		return tx.CreateOrderItems(ctx, items)
	})
	if err != nil {
		s.recordFailure(err)
		return nil, nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	util.OrderItemsCreatedTotal.Add(float64(len(items)))
	util.RecordsCreatedTotal.WithLabelValues("orders").Inc()
	s.logger.Info("Order created",
		zap.Int64("order_id", order.OrderID),
		zap.Int("items", len(items)))

	event := &models.OrderPlacedEvent{
		BaseEvent:    newBaseEvent(models.EventTypeOrderPlaced),
		OrderID:      order.OrderID,
		UserID:       order.UserID,
		RestaurantID: order.RestaurantID,
		TotalAmount:  order.TotalAmount,
		Items:        make([]models.OrderItemData, len(items)),
	}
	for i, item := range items {
		event.Items[i] = models.OrderItemData{ItemID: item.ItemID, Quantity: item.Quantity}
	}
	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	return order, items, nil
}

// DeleteOrder removes an order's lines and then the order in one
// transaction. A missing order is NotFound and leaves any stray lines alone.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID int64) error {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteOrder")
	defer span.End()

	var itemsRemoved int64
	err := s.store.WithTx(ctx, func(tx *store.Tx) error {
		var err error
		if itemsRemoved, err = tx.DeleteOrderItems(ctx, orderID); err != nil {
			return err
		}

		n, err := tx.DeleteOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.NotFound("orders %d not found", orderID)
		}
		return nil
	})
	if err != nil {
		s.recordFailure(err)
		return fmt.Errorf("failed to delete order %d: %w", orderID, err)
	}

	util.OrdersDeletedTotal.Inc()
	util.RecordsDeletedTotal.WithLabelValues("orders").Inc()
	s.logger.Info("Order deleted",
		zap.Int64("order_id", orderID),
		zap.Int64("items_removed", itemsRemoved))

	event := &models.OrderDeletedEvent{
		BaseEvent:    newBaseEvent(models.EventTypeOrderDeleted),
		OrderID:      orderID,
		ItemsRemoved: itemsRemoved,
	}
	if err := s.events.PublishOrderDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderDeleted event", zap.Error(err))
	}

	return nil
}

func (s *OrderService) recordFailure(err error) {
	util.RequestFailuresTotal.WithLabelValues("orders", apperror.KindOf(err).String()).Inc()
}

// validateOrderRequest checks the fields gin binding cannot express
func validateOrderRequest(req *CreateOrderRequest) error {
	var problems *multierror.Error

	if req.UserID <= 0 {
		problems = multierror.Append(problems, fmt.Errorf("user_id must be a positive integer"))
	}
	if req.RestaurantID <= 0 {
		problems = multierror.Append(problems, fmt.Errorf("restaurant_id must be a positive integer"))
	}
	if req.PartnerID != nil && *req.PartnerID <= 0 {
		problems = multierror.Append(problems, fmt.Errorf("partner_id must be a positive integer"))
	}
	if req.TotalAmount == nil {
		problems = multierror.Append(problems, fmt.Errorf("total_amount is required"))
	} else if *req.TotalAmount < 0 {
		problems = multierror.Append(problems, fmt.Errorf("total_amount must not be negative"))
	}

	for i, line := range req.Items {
		if line.ItemID <= 0 {
			problems = multierror.Append(problems, fmt.Errorf("items[%d].item_id must be a positive integer", i))
		}
		if line.Quantity != nil && *line.Quantity <= 0 {
			problems = multierror.Append(problems, fmt.Errorf("items[%d].quantity must be positive", i))
		}
	}

	if problems != nil {
		problems.ErrorFormat = joinProblems
		return apperror.Validation("%s", problems.Error())
	}
	return nil
}
