package store

import (
	"errors"

	"platform-service/internal/apperror"

	"github.com/lib/pq"
)

// translateError classifies PostgreSQL errors into apperror kinds.
// Errors that are not *pq.Error are returned unchanged.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case "23503":
		return apperror.Constraint(err, "referenced row does not exist or is still referenced (%s)", detail(pqErr))
	case "23502":
		return apperror.Constraint(err, "missing required column %s", pqErr.Column)
	case "23505":
		return apperror.Constraint(err, "duplicate value (%s)", detail(pqErr))
	case "23514":
		return apperror.Constraint(err, "check constraint %s failed", pqErr.Constraint)
	case "22P02", "22003":
		return apperror.Wrap(apperror.KindValidation, err, "invalid value")
	default:
		return err
	}
}

func detail(pqErr *pq.Error) string {
	if pqErr.Detail != "" {
		return pqErr.Detail
	}
	return pqErr.Message
}
