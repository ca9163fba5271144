package models

import "fmt"

// TargetKind discriminates what a rating points at.
type TargetKind string

const (
	TargetDriver     TargetKind = "driver"
	TargetRestaurant TargetKind = "restaurant"
)

// RatingTarget is either Driver(id) or Restaurant(id).
type RatingTarget struct {
	Kind TargetKind
	ID   int64
}

// ParseRatingTarget builds a target from the target_type/target_id pair.
func ParseRatingTarget(targetType string, targetID int64) (RatingTarget, error) {
	if targetID <= 0 {
		return RatingTarget{}, fmt.Errorf("target_id must be positive, got %d", targetID)
	}
	switch kind := TargetKind(targetType); kind {
	case TargetDriver, TargetRestaurant:
		return RatingTarget{Kind: kind, ID: targetID}, nil
	default:
		return RatingTarget{}, fmt.Errorf("target_type must be %q or %q, got %q", TargetDriver, TargetRestaurant, targetType)
	}
}

// Table returns the table and key column holding the target row.
func (t RatingTarget) Table() (table, key string) {
	if t.Kind == TargetDriver {
		return "drivers", "driver_id"
	}
	return "restaurants", "restaurant_id"
}

func (t RatingTarget) String() string {
	return fmt.Sprintf("%s(%d)", t.Kind, t.ID)
}
