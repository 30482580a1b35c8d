// Package uid generates identifiers: UUIDv7 for domain entities and snowflake
// numbers for append-only rows such as audit events and recovery codes.
package uid

import "github.com/google/uuid"

// NumberID generates time ordered int64 identifiers.
type NumberID interface {
	Generate() int64
}

// UUIDGenerator generates entity identifiers.
type UUIDGenerator interface {
	Generate() uuid.UUID
}
