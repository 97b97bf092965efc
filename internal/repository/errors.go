package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Common repository errors
var (
	// ErrTaskNotFound is returned when no task has the requested id
	ErrTaskNotFound = errors.New("task not found")

	// ErrConstraintViolation is returned when the database rejects a row,
	// e.g. a status outside the check constraint
	ErrConstraintViolation = errors.New("constraint violation")
)

func translateError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return errors.Join(ErrConstraintViolation, err)
	}
	return err
}
