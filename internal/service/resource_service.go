package service

import (
	"context"
	"fmt"
	"time"

	"platform-service/internal/apperror"
	"platform-service/internal/models"
	"platform-service/internal/store"
	"platform-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher receives domain events after their rows are committed
type EventPublisher interface {
	PublishRecordCreated(ctx context.Context, event *models.RecordCreatedEvent) error
	PublishRecordDeleted(ctx context.Context, event *models.RecordDeletedEvent) error
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
	PublishOrderDeleted(ctx context.Context, event *models.OrderDeletedEvent) error
}

// ResourceService implements create, list and delete for catalog resources
type ResourceService struct {
	store   *store.Store
	events  EventPublisher
	catalog map[string]*Resource
	logger  *zap.Logger
}

// NewResourceService creates a new resource service
func NewResourceService(store *store.Store, events EventPublisher) *ResourceService {
	return &ResourceService{
		store:   store,
		events:  events,
		catalog: Catalog(),
		logger:  util.GetLogger(),
	}
}

// Created is the outcome of a successful create
type Created struct {
	Resource string
	Key      string
	ID       int64
	Fields   Fields
}

// Resources returns the catalog served by this service
func (s *ResourceService) Resources() map[string]*Resource {
	return s.catalog
}

// Create validates body and inserts one row
func (s *ResourceService) Create(ctx context.Context, name string, body map[string]interface{}) (*Created, error) {
	ctx, span := util.StartSpan(ctx, "ResourceService.Create")
	defer span.End()

	res, err := s.lookup(name, true)
	if err != nil {
		return nil, err
	}

	fields, err := res.Accept(body)
	if err != nil {
		s.recordFailure(name, err)
		return nil, err
	}

	columns, values := res.row(fields)

	var id int64
	if res.verify == nil {
		id, err = s.store.Insert(ctx, res.Table, columns, values)
	} else {
		err = s.store.WithTx(ctx, func(tx *store.Tx) error {
			if err := res.verify(ctx, tx, fields); err != nil {
				return err
			}
			var err error
			id, err = tx.Insert(ctx, res.Table, columns, values)
			return err
		})
	}
	if err != nil {
		s.recordFailure(name, err)
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}

	fields[res.Table.Key] = id
	util.RecordsCreatedTotal.WithLabelValues(name).Inc()
	s.logger.Info("Record created", zap.String("resource", name), zap.Int64("id", id))

	event := &models.RecordCreatedEvent{
		BaseEvent: newBaseEvent(models.EventTypeRecordCreated),
		Resource:  name,
		ID:        id,
		Data:      fields,
	}
	if err := s.events.PublishRecordCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish RecordCreated event", zap.String("resource", name), zap.Error(err))
	}

	return &Created{Resource: name, Key: res.Table.Key, ID: id, Fields: fields}, nil
}

// List returns every row of the resource
func (s *ResourceService) List(ctx context.Context, name string) ([]store.Record, error) {
	ctx, span := util.StartSpan(ctx, "ResourceService.List")
	defer span.End()

	res, err := s.lookup(name, false)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListAll(ctx, res.Table)
	if err != nil {
		s.recordFailure(name, err)
		return nil, fmt.Errorf("failed to list %s: %w", name, err)
	}
	return records, nil
}

// Delete removes the row with the given key
func (s *ResourceService) Delete(ctx context.Context, name string, id int64) (string, error) {
	ctx, span := util.StartSpan(ctx, "ResourceService.Delete")
	defer span.End()

	res, err := s.lookup(name, true)
	if err != nil {
		return "", err
	}

	n, err := s.store.DeleteByID(ctx, res.Table, id)
	if err != nil {
		s.recordFailure(name, err)
		return "", fmt.Errorf("failed to delete %s %d: %w", name, id, err)
	}
	if n == 0 {
		err := apperror.NotFound("%s %d not found", name, id)
		s.recordFailure(name, err)
		return "", err
	}

	util.RecordsDeletedTotal.WithLabelValues(name).Inc()
	s.logger.Info("Record deleted", zap.String("resource", name), zap.Int64("id", id))

	event := &models.RecordDeletedEvent{
		BaseEvent: newBaseEvent(models.EventTypeRecordDeleted),
		Resource:  name,
		ID:        id,
	}
	if err := s.events.PublishRecordDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish RecordDeleted event", zap.String("resource", name), zap.Error(err))
	}

	return res.Table.Key, nil
}

func (s *ResourceService) lookup(name string, write bool) (*Resource, error) {
	res, ok := s.catalog[name]
	if !ok || (write && !res.Writable) {
		return nil, apperror.NotFound("resource %q does not support this operation", name)
	}
	return res, nil
}

func (s *ResourceService) recordFailure(name string, err error) {
	util.RequestFailuresTotal.WithLabelValues(name, apperror.KindOf(err).String()).Inc()
}

func newBaseEvent(eventType string) models.BaseEvent {
	return models.BaseEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now(),
	}
}
