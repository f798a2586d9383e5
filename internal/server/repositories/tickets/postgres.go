package tickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/dmitrijs2005/casauth/internal/dbx"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, id string, payload []byte, expiresAt time.Time) error {
	query := `
		INSERT INTO cas_tickets (id, payload, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at
	`
	if _, err := r.db.ExecContext(ctx, query, id, payload, expiresAt); err != nil {
		return fmt.Errorf("error performing sql request: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Find(ctx context.Context, id string, now time.Time) ([]byte, error) {
	query := `
		SELECT payload
		FROM cas_tickets
		WHERE id = $1 AND expires_at > $2
	`
	var payload []byte
	if err := r.db.QueryRowContext(ctx, query, id, now).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return payload, nil
}

func (r *PostgresRepository) Take(ctx context.Context, id string, now time.Time) ([]byte, error) {
	query := `
		DELETE FROM cas_tickets
		WHERE id = $1
		RETURNING payload, expires_at
	`
	var (
		payload   []byte
		expiresAt time.Time
	)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&payload, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if !expiresAt.After(now) {
		return nil, common.ErrorNotFound
	}
	return payload, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM cas_tickets
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM cas_tickets
		WHERE expires_at <= $1
	`
	res, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
