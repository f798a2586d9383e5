// Package secondfactors reads TOTP settings from addons_twofactor_usersettings.
package secondfactors

import (
	"context"

	"github.com/dmitrijs2005/casauth/internal/server/models"
)

type Repository interface {
	// FindByOwnerID returns the user's second-factor record, preferring a
	// non-deleted one, or common.ErrorNotFound.
	FindByOwnerID(ctx context.Context, ownerID int64) (*models.SecondFactor, error)
}
