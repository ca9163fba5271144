package broker

import (
	"context"
	"testing"

	"platform-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestDisabledPublisherDropsEvents(t *testing.T) {
	ep := NewEventPublisher(nil)

	assert.False(t, ep.Enabled())
	assert.NoError(t, ep.PublishRecordCreated(context.Background(), &models.RecordCreatedEvent{Resource: "users", ID: 1}))
	assert.NoError(t, ep.PublishOrderDeleted(context.Background(), &models.OrderDeletedEvent{OrderID: 2}))
}

func TestRecordKey(t *testing.T) {
	assert.Equal(t, "menu_items-12", recordKey("menu_items", 12))
	assert.Equal(t, "orders-3", recordKey("orders", 3))
}
