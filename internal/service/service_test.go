package service

import (
	"context"
	"sync"
	"testing"

	"platform-service/internal/models"
	"platform-service/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"gopkg.in/DATA-DOG/go-sqlmock.v1"
)

// recordingPublisher keeps every published event for assertions
type recordingPublisher struct {
	mu      sync.Mutex
	created []*models.RecordCreatedEvent
	deleted []*models.RecordDeletedEvent
	placed  []*models.OrderPlacedEvent
	removed []*models.OrderDeletedEvent
}

func (p *recordingPublisher) PublishRecordCreated(_ context.Context, e *models.RecordCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, e)
	return nil
}

func (p *recordingPublisher) PublishRecordDeleted(_ context.Context, e *models.RecordDeletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, e)
	return nil
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e *models.OrderPlacedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placed = append(p.placed, e)
	return nil
}

func (p *recordingPublisher) PublishOrderDeleted(_ context.Context, e *models.OrderDeletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removed = append(p.removed, e)
	return nil
}

func newMockStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return store.New(sqlx.NewDb(db, "postgres")), mock
}
