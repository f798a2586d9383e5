package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/casauth/internal/dbx"
	"github.com/dmitrijs2005/casauth/internal/server/repositories/guids"
	"github.com/dmitrijs2005/casauth/internal/server/repositories/secondfactors"
	"github.com/dmitrijs2005/casauth/internal/server/repositories/tickets"
	"github.com/dmitrijs2005/casauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	SecondFactors(db dbx.DBTX) secondfactors.Repository
	Guids(db dbx.DBTX) guids.Repository
	Tickets(db dbx.DBTX) tickets.Repository
}
