// Package directory is the user directory read by the authenticator. Every
// call goes to the database; nothing is cached.
package directory

import (
	"context"

	"github.com/dmitrijs2005/casauth/internal/server/models"
	"github.com/dmitrijs2005/casauth/internal/server/repositories/guids"
	"github.com/dmitrijs2005/casauth/internal/server/repositories/secondfactors"
	"github.com/dmitrijs2005/casauth/internal/server/repositories/users"
)

type Directory struct {
	users         users.Repository
	secondFactors secondfactors.Repository
	guids         guids.Repository
}

func New(u users.Repository, sf secondfactors.Repository, g guids.Repository) *Directory {
	return &Directory{users: u, secondFactors: sf, guids: g}
}

func (d *Directory) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.users.FindByEmail(ctx, email)
}

func (d *Directory) FindSecondFactorByOwnerID(ctx context.Context, ownerID int64) (*models.SecondFactor, error) {
	return d.secondFactors.FindByOwnerID(ctx, ownerID)
}

func (d *Directory) FindExternalIDForUser(ctx context.Context, user *models.User) (string, error) {
	return d.guids.FindByUser(ctx, user.ID)
}
