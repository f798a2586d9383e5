package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/casauth/internal/common"
	"github.com/dmitrijs2005/casauth/internal/dbx"
	"github.com/dmitrijs2005/casauth/internal/server/models"
)

// PostgresRepository reads osf_osfuser and osf_email over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT u.id, u.username, u.password, u.verification_key, u.given_name, u.family_name,
		       u.is_registered, u.date_confirmed IS NOT NULL, u.is_claimed,
		       u.merged_by_id IS NOT NULL, u.date_disabled IS NOT NULL, u.is_active
		FROM osf_osfuser u
		WHERE LOWER(u.username) = $1
		   OR EXISTS (SELECT 1 FROM osf_email e WHERE e.user_id = u.id AND LOWER(e.address) = $1)
		ORDER BY u.id
		LIMIT 1
	`
	var (
		user            models.User
		password        sql.NullString
		verificationKey sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(
		&user.ID, &user.Username, &password, &verificationKey, &user.GivenName, &user.FamilyName,
		&user.Registered, &user.Confirmed, &user.Claimed,
		&user.Merged, &user.Disabled, &user.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if password.Valid {
		user.PasswordHash = &password.String
	}
	if verificationKey.Valid {
		user.VerificationKey = &verificationKey.String
	}
	return &user, nil
}
