// Package tickets persists serialized CAS tickets in the cas_tickets table.
package tickets

import (
	"context"
	"time"
)

// Repository stores opaque ticket payloads keyed by ticket id. Expired rows
// are invisible to reads.
type Repository interface {
	// Create stores payload under id until expiresAt, replacing any previous row.
	Create(ctx context.Context, id string, payload []byte, expiresAt time.Time) error

	// Find returns the payload of a live ticket or common.ErrorNotFound.
	Find(ctx context.Context, id string, now time.Time) ([]byte, error)

	// Take deletes the row and returns its payload if it was still live.
	// Concurrent callers never both receive the payload.
	Take(ctx context.Context, id string, now time.Time) ([]byte, error)

	// Delete removes a ticket. Deleting a missing ticket is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteExpired purges rows that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
