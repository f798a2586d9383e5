// Package users reads OSF user records for credential verification.
package users

import (
	"context"

	"github.com/dmitrijs2005/casauth/internal/server/models"
)

// Repository looks up users. It never writes.
type Repository interface {
	// FindByEmail matches the username or any of the user's email addresses,
	// case-insensitively. It returns common.ErrorNotFound when nothing matches.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}
