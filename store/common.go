package store

import "errors"

var (
	// ErrDuplicate is returned by drivers when an insert or update violates a unique constraint.
	ErrDuplicate = errors.New("unique constraint violation")
	// ErrNotFound is returned by drivers when an update or delete matches no row.
	ErrNotFound = errors.New("not found")
)
