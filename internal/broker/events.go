package broker

import (
	"context"
	"fmt"

	"platform-service/internal/models"
)

// EventPublisher handles publishing domain events.
// A publisher without a producer drops every event.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// Enabled reports whether events reach a broker
func (ep *EventPublisher) Enabled() bool {
	return ep != nil && ep.producer != nil
}

// PublishRecordCreated publishes RecordCreated event
func (ep *EventPublisher) PublishRecordCreated(ctx context.Context, event *models.RecordCreatedEvent) error {
	return ep.publish(ctx, recordKey(event.Resource, event.ID), event)
}

// PublishRecordDeleted publishes RecordDeleted event
func (ep *EventPublisher) PublishRecordDeleted(ctx context.Context, event *models.RecordDeletedEvent) error {
	return ep.publish(ctx, recordKey(event.Resource, event.ID), event)
}

// PublishOrderPlaced publishes OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return ep.publish(ctx, recordKey("orders", event.OrderID), event)
}

// PublishOrderDeleted publishes OrderDeleted event
func (ep *EventPublisher) PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error {
	return ep.publish(ctx, recordKey("orders", event.OrderID), event)
}

func (ep *EventPublisher) publish(ctx context.Context, key string, event interface{}) error {
	if !ep.Enabled() {
		return nil
	}
	return ep.producer.PublishEvent(ctx, key, event)
}

func recordKey(resource string, id int64) string {
	return fmt.Sprintf("%s-%d", resource, id)
}
