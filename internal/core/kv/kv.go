// Package kv defines the key-value storage medium used for local persistence.
package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrKeyNotFound is returned when a key does not exist.
	ErrKeyNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned when a write would grow the store past its capacity.
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Entry is a stored blob with metadata.
type Entry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store reads and writes opaque string blobs by key. There is no transactional
// guarantee across keys.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Entry, error)
}
