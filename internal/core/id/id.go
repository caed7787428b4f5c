// Package id provides UUIDv7 generation for all entities.
// UUIDv7 is time-ordered, so primary keys sort by creation time.
package id

import (
	"github.com/google/uuid"
)

// ID is a type alias for UUID, used across all entities.
type ID = uuid.UUID

// New generates a new UUIDv7 per RFC 9562.
// The embedded Unix timestamp gives chronological ordering and
// better B-tree locality in PostgreSQL than random UUIDs.
func New() ID {
	v7, err := uuid.NewV7()
	if err != nil {
		// Fallback to V4 (should never happen)
		return uuid.New()
	}
	return v7
}

// Parse converts a string to an ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts a string to an ID, panics on error.
// Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero-value UUID.
func Nil() ID {
	return uuid.Nil
}

// IsNil checks if an ID is the zero value.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
