package cache

import (
	"context"
	"time"
)

// Backend is a key/value store with per-entry expiry. Keys arrive already
// prefixed with their namespace. A ttl <= 0 means no expiry.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// BatchSetter writes several entries atomically.
type BatchSetter interface {
	SetMany(ctx context.Context, items map[string][]byte, ttl time.Duration) error
}

// PrefixDeleter removes every key starting with prefix.
type PrefixDeleter interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// Sweeper purges expired entries and reports how many were removed.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// backendName returns b's Name() when it has one.
func backendName(b Backend) string {
	if b == nil {
		return ""
	}
	if n, ok := b.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "custom"
}
