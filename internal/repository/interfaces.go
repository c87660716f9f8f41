package repository

import (
	"context"
)

// Slot is a raw key-value storage slot holding serialized values.
// This allows switching between memory, file, Redis, PostgreSQL and
// object storage without touching the profile logic.
type Slot interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)

	// Set overwrites the value stored under key
	Set(ctx context.Context, key, value string) error

	// Name identifies the backend in logs and metrics
	Name() string
}
