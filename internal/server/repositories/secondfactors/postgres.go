package secondfactors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/dmitrijs2005/casauth/internal/dbx"
	"github.com/dmitrijs2005/casauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByOwnerID(ctx context.Context, ownerID int64) (*models.SecondFactor, error) {
	query := `
		SELECT owner_id, totp_secret, is_confirmed, is_deleted
		FROM addons_twofactor_usersettings
		WHERE owner_id = $1
		ORDER BY is_deleted ASC, id DESC
		LIMIT 1
	`
	var (
		sf     models.SecondFactor
		secret sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&sf.OwnerID, &secret, &sf.Confirmed, &sf.Deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if secret.Valid {
		sf.TOTPSecret = &secret.String
	}
	return &sf, nil
}
