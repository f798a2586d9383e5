package tickets

import (
	"context"
	"time"
)

// Storage holds serialized tickets. Missing and expired keys both read as
// common.ErrorNotFound. Implementations must be safe for concurrent use.
type Storage interface {
	Put(ctx context.Context, id string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, id string) ([]byte, error)
	// Take returns the value and removes it; of two concurrent callers at
	// most one sees the value.
	Take(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

// Purger is implemented by storages that need expired entries removed
// explicitly.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}
