package postgres

import (
	"errors"

	"github.com/lib/pq"

	"github.com/grayola/task-manager/internal/apperr"
)

const (
	codeUniqueViolation       = "23505"
	codeInsufficientPrivilege = "42501"
)

// Classify maps a driver error onto the application error taxonomy.
// Errors that are already classified pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}

	var pgErr *pq.Error
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return apperr.Conflict("record already exists", err)
		case codeInsufficientPrivilege:
			return apperr.Wrap(err, apperr.KindForbidden, "permission denied by store")
		}
	}

	return apperr.Store(err)
}
