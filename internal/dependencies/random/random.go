package random

import (
	"strings"

	"github.com/google/uuid"
)

// Random generates identifiers and can be mocked for testing
type Random interface {
	// ID returns a new unique identifier starting with prefix
	ID(prefix string) string
}

// UUIDRandom implements Random with random (v4) UUIDs
type UUIDRandom struct{}

// New creates a new UUIDRandom
func New() *UUIDRandom {
	return &UUIDRandom{}
}

// ID returns prefix followed by the hex digits of a fresh UUID
func (r *UUIDRandom) ID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}
