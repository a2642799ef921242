// Package id generates order identifiers.
package id

import "github.com/google/uuid"

// Generator produces collision-resistant short identifiers.
type Generator interface {
	NewID() string
}

type uuidGenerator struct{}

func NewUUIDGenerator() Generator {
	return uuidGenerator{}
}

// NewID returns the first 8 hex characters of a random UUID. Collisions are
// unlikely at this scale; the order ledger retries on the rare hit.
func (uuidGenerator) NewID() string {
	return uuid.NewString()[:8]
}
