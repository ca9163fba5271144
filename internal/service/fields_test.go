package service

import (
	"encoding/json"
	"testing"

	"platform-service/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &m))
	return m
}

func TestAcceptAppliesDefaults(t *testing.T) {
	drivers := Catalog()["drivers"]

	fields, err := drivers.Accept(decode(t, `{"name": "Manjunath Swamy", "vehicle_no": "KA-01-AA-1234"}`))

	require.NoError(t, err)
	assert.Equal(t, "Manjunath Swamy", fields["name"])
	assert.Equal(t, "KA-01-AA-1234", fields["vehicle_no"])
	assert.Nil(t, fields["phone"])
	assert.Equal(t, float64(0), fields["rating"])
	assert.Equal(t, "available", fields["status"])
}

func TestAcceptCollectsEveryProblem(t *testing.T) {
	menuItems := Catalog()["menu_items"]

	_, err := menuItems.Accept(decode(t, `{"restaurant_id": 1.5, "price": "cheap"}`))

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "restaurant_id must be an integer")
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "price must be a number")
}

func TestAcceptNullRequiredIsMissing(t *testing.T) {
	users := Catalog()["users"]

	_, err := users.Accept(decode(t, `{"name": null}`))

	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "name is required")
}

func TestAcceptRejectsUnknownStatus(t *testing.T) {
	partners := Catalog()["delivery_partners"]

	_, err := partners.Accept(decode(t, `{"name": "Zomato Valet", "status": "offline"}`))

	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "status must be one of available, busy")
}

func TestAcceptIgnoresUnknownFields(t *testing.T) {
	restaurants := Catalog()["restaurants"]

	fields, err := restaurants.Accept(decode(t, `{"name": "Truffles", "owner": "someone"}`))

	require.NoError(t, err)
	_, ok := fields["owner"]
	assert.False(t, ok)
}

func TestAcceptNegativeAmount(t *testing.T) {
	rides := Catalog()["rides"]

	_, err := rides.Accept(decode(t,
		`{"user_id": 1, "driver_id": 1, "source": "HSR Layout", "destination": "Koramangala", "fare": -90}`))

	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "fare must not be negative")
}

func TestAcceptIntegerOutOfRange(t *testing.T) {
	ratings := Catalog()["ratings"]

	_, err := ratings.Accept(decode(t, `{"user_id": 1e19, "target_id": 2147483648, "target_type": "driver", "score": 1e19}`))

	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "user_id is out of range")
	assert.Contains(t, err.Error(), "target_id is out of range")
	assert.Contains(t, err.Error(), "score is out of range")
	assert.NotContains(t, err.Error(), "-9223372036854775808")

	fields, err := ratings.Accept(decode(t, `{"user_id": 2147483647, "target_id": 1, "target_type": "driver", "score": 3}`))
	require.NoError(t, err)
	assert.Equal(t, int64(2147483647), fields["user_id"])
}

func TestPaymentNeedsExactlyOneReference(t *testing.T) {
	payments := Catalog()["payments"]

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"ride only", `{"user_id": 1, "ride_id": 2, "amount": 140, "mode": "upi"}`, false},
		{"order only", `{"user_id": 1, "order_id": 3, "amount": 640, "mode": "card"}`, false},
		{"neither", `{"user_id": 1, "amount": 640, "mode": "card"}`, true},
		{"both", `{"user_id": 1, "ride_id": 2, "order_id": 3, "amount": 640, "mode": "card"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := payments.Accept(decode(t, tt.body))
			if tt.wantErr {
				assert.True(t, apperror.Is(err, apperror.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "pending", fields["status"])
		})
	}
}

func TestRatingScoreRange(t *testing.T) {
	ratings := Catalog()["ratings"]

	_, err := ratings.Accept(decode(t, `{"user_id": 1, "target_id": 1, "target_type": "driver", "score": 6}`))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = ratings.Accept(decode(t, `{"user_id": 1, "target_id": 1, "target_type": "venue", "score": 4}`))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	fields, err := ratings.Accept(decode(t, `{"user_id": 1, "target_id": 1, "target_type": "restaurant", "score": 5}`))
	require.NoError(t, err)
	assert.Equal(t, int64(5), fields["score"])
}

func TestRowFollowsColumnOrder(t *testing.T) {
	users := Catalog()["users"]
	fields, err := users.Accept(decode(t, `{"name": "Vikram Singh", "wallet_balance": 1200}`))
	require.NoError(t, err)

	columns, values := users.row(fields)

	assert.Equal(t, []string{"name", "phone", "email", "address", "wallet_balance"}, columns)
	assert.Equal(t, []interface{}{"Vikram Singh", nil, nil, nil, float64(1200)}, values)
}

func TestCatalogWritability(t *testing.T) {
	catalog := Catalog()

	assert.Len(t, catalog, 10)
	assert.False(t, catalog["orders"].Writable)
	assert.False(t, catalog["order_items"].Writable)
	assert.True(t, catalog["ratings"].Writable)
	assert.Equal(t, "menu_items", Names(catalog)[2])
}
