package service

import (
	"context"
	"sort"

	"platform-service/internal/apperror"
	"platform-service/internal/models"
	"platform-service/internal/store"
)

// Resource describes one table exposed over the generic CRUD endpoints.
type Resource struct {
	Name    string
	Table   store.Table
	Columns []Column

	// Writable resources get generic create and delete; the rest are
	// list-only or written by a dedicated service.
	Writable bool

	// check enforces cross-field rules on accepted fields.
	check func(fields Fields) error
	// verify runs inside the insert transaction before the row is written.
	verify func(ctx context.Context, tx *store.Tx, fields Fields) error
}

var (
	statusValues     = []string{models.AvailabilityAvailable, models.AvailabilityBusy}
	targetTypeValues = []string{string(models.TargetDriver), string(models.TargetRestaurant)}
)

// Catalog returns every resource keyed by its URL name
func Catalog() map[string]*Resource {
	resources := []*Resource{
		{
			Name:     "users",
			Table:    store.Table{Name: "users", Key: "user_id"},
			Writable: true,
			Columns: []Column{
				{Name: "name", Kind: KindString, Required: true},
				{Name: "phone", Kind: KindString},
				{Name: "email", Kind: KindString},
				{Name: "address", Kind: KindString},
				{Name: "wallet_balance", Kind: KindNumber, Default: float64(0)},
			},
		},
		{
			Name:     "drivers",
			Table:    store.Table{Name: "drivers", Key: "driver_id"},
			Writable: true,
			Columns: []Column{
				{Name: "name", Kind: KindString, Required: true},
				{Name: "phone", Kind: KindString},
				{Name: "license_no", Kind: KindString},
				{Name: "vehicle_no", Kind: KindString},
				{Name: "rating", Kind: KindNumber, Default: float64(0), NonNegative: true},
				{Name: "status", Kind: KindString, Default: models.AvailabilityAvailable, OneOf: statusValues},
			},
		},
		{
			Name:     "restaurants",
			Table:    store.Table{Name: "restaurants", Key: "restaurant_id"},
			Writable: true,
			Columns: []Column{
				{Name: "name", Kind: KindString, Required: true},
				{Name: "location", Kind: KindString},
				{Name: "cuisine", Kind: KindString},
				{Name: "rating", Kind: KindNumber, Default: float64(0), NonNegative: true},
			},
		},
		{
			Name:     "menu_items",
			Table:    store.MenuItemsTable,
			Writable: true,
			Columns: []Column{
				{Name: "restaurant_id", Kind: KindInteger, Required: true},
				{Name: "name", Kind: KindString, Required: true},
				{Name: "price", Kind: KindNumber, Required: true, NonNegative: true},
				{Name: "availability", Kind: KindBoolean, Default: true},
			},
		},
		{
			Name:     "delivery_partners",
			Table:    store.Table{Name: "delivery_partners", Key: "partner_id"},
			Writable: true,
			Columns: []Column{
				{Name: "name", Kind: KindString, Required: true},
				{Name: "phone", Kind: KindString},
				{Name: "vehicle_no", Kind: KindString},
				{Name: "status", Kind: KindString, Default: models.AvailabilityAvailable, OneOf: statusValues},
			},
		},
		{
			Name:     "rides",
			Table:    store.Table{Name: "rides", Key: "ride_id"},
			Writable: true,
			Columns: []Column{
				{Name: "user_id", Kind: KindInteger, Required: true},
				{Name: "driver_id", Kind: KindInteger, Required: true},
				{Name: "source", Kind: KindString, Required: true},
				{Name: "destination", Kind: KindString, Required: true},
				{Name: "fare", Kind: KindNumber, Required: true, NonNegative: true},
				{Name: "status", Kind: KindString, Default: models.RideStatusRequested},
			},
		},
		{
			Name:     "payments",
			Table:    store.Table{Name: "payments", Key: "payment_id"},
			Writable: true,
			Columns: []Column{
				{Name: "user_id", Kind: KindInteger, Required: true},
				{Name: "ride_id", Kind: KindInteger},
				{Name: "order_id", Kind: KindInteger},
				{Name: "amount", Kind: KindNumber, Required: true, NonNegative: true},
				{Name: "mode", Kind: KindString, Required: true},
				{Name: "status", Kind: KindString, Default: models.PaymentStatusPending},
			},
			check: checkPaymentReference,
		},
		{
			Name:     "ratings",
			Table:    store.Table{Name: "ratings", Key: "rating_id"},
			Writable: true,
			Columns: []Column{
				{Name: "user_id", Kind: KindInteger, Required: true},
				{Name: "target_id", Kind: KindInteger, Required: true},
				{Name: "target_type", Kind: KindString, Required: true, OneOf: targetTypeValues},
				{Name: "score", Kind: KindInteger, Required: true},
				{Name: "comment", Kind: KindString},
			},
			check:  checkRatingScore,
			verify: verifyRatingTarget,
		},
		{
			Name:  "orders",
			Table: store.OrdersTable,
		},
		{
			Name:  "order_items",
			Table: store.OrderItemsTable,
		},
	}

	catalog := make(map[string]*Resource, len(resources))
	for _, r := range resources {
		catalog[r.Name] = r
	}
	return catalog
}

// Names returns the catalog's resource names in sorted order
func Names(catalog map[string]*Resource) []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// A payment settles exactly one ride or one order.
func checkPaymentReference(fields Fields) error {
	hasRide := fields["ride_id"] != nil
	hasOrder := fields["order_id"] != nil
	if hasRide == hasOrder {
		return apperror.Validation("exactly one of ride_id or order_id is required")
	}
	return nil
}

func checkRatingScore(fields Fields) error {
	score, _ := fields["score"].(int64)
	if score < 1 || score > 5 {
		return apperror.Validation("score must be between 1 and 5, got %d", score)
	}
	return nil
}

func verifyRatingTarget(ctx context.Context, tx *store.Tx, fields Fields) error {
	targetType, _ := fields["target_type"].(string)
	targetID, _ := fields["target_id"].(int64)

	target, err := models.ParseRatingTarget(targetType, targetID)
	if err != nil {
		return apperror.Validation("%s", err.Error())
	}

	table, key := target.Table()
	found, err := tx.Exists(ctx, store.Table{Name: table, Key: key}, target.ID)
	if err != nil {
		return err
	}
	if !found {
		return apperror.Constraint(nil, "rating target %s does not exist", target)
	}
	return nil
}
