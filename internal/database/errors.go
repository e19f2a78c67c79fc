package database

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a row with the requested id does not exist
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint is violated
	ErrDuplicate = errors.New("already exists")
)

// pqUniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
