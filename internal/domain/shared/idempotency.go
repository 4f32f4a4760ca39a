package shared

import (
	"context"
	"time"
)

// IdempotencyStore tracks which inbound payloads have already been processed.
// It is a fast-path guard in front of the state-based reconciliation guards;
// the aggregate state remains the authority on whether a payload was applied.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close releases resources held by the store
	Close() error
}
