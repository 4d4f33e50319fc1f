// Package usecase implements the business logic for the books feature.
package usecase

import "errors"

var (
	// ErrBookNotFound is returned when no book matches the given ID.
	ErrBookNotFound = errors.New("book not found")
)
