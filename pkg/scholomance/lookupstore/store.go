// Package lookupstore persists dictionary lookup responses so repeat
// lookups, across engine instances and processes, skip the network.
package lookupstore

import (
	"context"
	"time"
)

// Store is the persistence interface for dictionary lookups.
type Store interface {
	Close() error

	// Get returns the entry stored under key; the bool is false on a miss.
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, e Entry) error
	Delete(ctx context.Context, key string) error

	// Prune removes entries cached before cutoff and returns how many.
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

// Entry is one stored lookup response.
type Entry struct {
	IsValid     bool
	Definitions []string
	Raw         []byte // upstream body, kept for debugging
	CachedAt    time.Time
}

// Age reports how old the entry is at now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.CachedAt)
}

// Fresh reports whether the entry is no older than maxAge at now.
// maxAge <= 0 accepts any age.
func (e Entry) Fresh(now time.Time, maxAge time.Duration) bool {
	return maxAge <= 0 || e.Age(now) <= maxAge
}
