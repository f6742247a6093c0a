package persistence

import (
	"database/sql"
	"errors"

	"sms_classifier/pkg/apperr"
)

// translate maps driver errors onto application errors.
func translate(op, resource string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound(resource)
	default:
		return apperr.DatabaseError(op, err)
	}
}
