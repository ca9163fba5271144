package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"platform-service/internal/apperror"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/DATA-DOG/go-sqlmock.v1"
)

func TestCreateEchoesAssignedKey(t *testing.T) {
	s, mock := newMockStore(t)
	events := &recordingPublisher{}
	svc := NewResourceService(s, events)

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO users (name, phone, email, address, wallet_balance) VALUES ($1, $2, $3, $4, $5) RETURNING user_id")).
		WithArgs("Rahul Sharma", "9876543210", "rahul@example.com", "Indiranagar, Bengaluru", float64(2500)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(int64(1)))

	created, err := svc.Create(context.Background(), "users", decode(t, `{
		"name": "Rahul Sharma",
		"phone": "9876543210",
		"email": "rahul@example.com",
		"address": "Indiranagar, Bengaluru",
		"wallet_balance": 2500
	}`))

	require.NoError(t, err)
	assert.Equal(t, "user_id", created.Key)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, int64(1), created.Fields["user_id"])

	require.Len(t, events.created, 1)
	assert.Equal(t, "users", events.created[0].Resource)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateValidationSkipsDatabase(t *testing.T) {
	s, mock := newMockStore(t)
	events := &recordingPublisher{}
	svc := NewResourceService(s, events)

	_, err := svc.Create(context.Background(), "restaurants", decode(t, `{"cuisine": "North Indian"}`))

	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Empty(t, events.created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMenuItemUnknownRestaurant(t *testing.T) {
	s, mock := newMockStore(t)
	svc := NewResourceService(s, &recordingPublisher{})

	mock.ExpectQuery("INSERT INTO menu_items").
		WillReturnError(&pq.Error{
			Code:   "23503",
			Detail: `Key (restaurant_id)=(99) is not present in table "restaurants".`,
		})

	_, err := svc.Create(context.Background(), "menu_items",
		decode(t, `{"restaurant_id": 99, "name": "Paneer Tikka", "price": 240}`))

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConstraint))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRatingChecksTarget(t *testing.T) {
	s, mock := newMockStore(t)
	events := &recordingPublisher{}
	svc := NewResourceService(s, events)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM restaurants WHERE restaurant_id = $1)")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("INSERT INTO ratings").
		WithArgs(int64(1), int64(2), "restaurant", int64(5), "Excellent biryani").
		WillReturnRows(sqlmock.NewRows([]string{"rating_id"}).AddRow(int64(8)))
	mock.ExpectCommit()

	created, err := svc.Create(context.Background(), "ratings", decode(t,
		`{"user_id": 1, "target_id": 2, "target_type": "restaurant", "score": 5, "comment": "Excellent biryani"}`))

	require.NoError(t, err)
	assert.Equal(t, int64(8), created.ID)
	assert.Len(t, events.created, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRatingMissingTarget(t *testing.T) {
	s, mock := newMockStore(t)
	events := &recordingPublisher{}
	svc := NewResourceService(s, events)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM drivers WHERE driver_id = $1)")).
		WithArgs(int64(77)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), "ratings", decode(t,
		`{"user_id": 1, "target_id": 77, "target_type": "driver", "score": 3}`))

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConstraint))
	assert.Contains(t, err.Error(), "driver(77)")
	assert.Empty(t, events.created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOnListOnlyResource(t *testing.T) {
	s, mock := newMockStore(t)
	svc := NewResourceService(s, &recordingPublisher{})

	_, err := svc.Create(context.Background(), "order_items", decode(t, `{"order_id": 1}`))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.Create(context.Background(), "coupons", decode(t, `{}`))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	s, mock := newMockStore(t)
	svc := NewResourceService(s, &recordingPublisher{})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM order_items ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "item_id", "quantity"}).
			AddRow(int64(1), int64(42), int64(1), int64(2)))

	records, err := svc.List(context.Background(), "order_items")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0]["quantity"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	s, mock := newMockStore(t)
	events := &recordingPublisher{}
	svc := NewResourceService(s, events)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM drivers WHERE driver_id = $1")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	key, err := svc.Delete(context.Background(), "drivers", 5)

	require.NoError(t, err)
	assert.Equal(t, "driver_id", key)
	require.Len(t, events.deleted, 1)
	assert.Equal(t, int64(5), events.deleted[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	events := &recordingPublisher{}
	svc := NewResourceService(s, events)

	mock.ExpectExec("DELETE FROM payments").WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := svc.Delete(context.Background(), "payments", 404)

	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, "payments 404 not found", err.Error())
	assert.Empty(t, events.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInternalFailureIsLeftToCallerToLog(t *testing.T) {
	s, mock := newMockStore(t)
	core, logs := observer.New(zapcore.DebugLevel)
	svc := NewResourceService(s, &recordingPublisher{})
	svc.logger = zap.New(core)

	mock.ExpectQuery("INSERT INTO users").WillReturnError(errors.New("connection reset by peer"))

	_, err := svc.Create(context.Background(), "users", decode(t, `{"name": "Rahul Sharma"}`))

	require.Error(t, err)
	assert.Equal(t, apperror.KindUnknown, apperror.KindOf(err))
	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
