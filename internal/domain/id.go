package domain

import "github.com/google/uuid"

// NewID generates a UUIDv7 string for run and document identifiers.
// UUIDv7 is time-sortable, so artifact and document names stay in rough
// chronological order without embedding a second timestamp.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
