package tickets

import (
	"context"
	"time"

	"github.com/dmitrijs2005/casauth/internal/server/repositories/tickets"
)

// PostgresStorage keeps tickets in the cas_tickets table. Expired rows stay
// until Purge removes them but are never returned.
type PostgresStorage struct {
	repo tickets.Repository
	now  func() time.Time
}

func NewPostgresStorage(repo tickets.Repository) *PostgresStorage {
	return &PostgresStorage{repo: repo, now: time.Now}
}

func (s *PostgresStorage) Put(ctx context.Context, id string, value []byte, ttl time.Duration) error {
	return s.repo.Create(ctx, id, value, s.now().Add(ttl))
}

func (s *PostgresStorage) Get(ctx context.Context, id string) ([]byte, error) {
	return s.repo.Find(ctx, id, s.now())
}

func (s *PostgresStorage) Take(ctx context.Context, id string) ([]byte, error) {
	return s.repo.Take(ctx, id, s.now())
}

func (s *PostgresStorage) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *PostgresStorage) Purge(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}
