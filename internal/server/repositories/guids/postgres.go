package guids

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/dmitrijs2005/casauth/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByUser(ctx context.Context, userID int64) (string, error) {
	query := `
		SELECT g._id
		FROM osf_guid g
		JOIN django_content_type ct ON ct.id = g.content_type_id
		WHERE g.object_id = $1 AND ct.app_label = 'osf' AND ct.model = 'osfuser'
		ORDER BY g.created ASC, g.id ASC
		LIMIT 1
	`
	var guid string
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&guid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return guid, nil
}
