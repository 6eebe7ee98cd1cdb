package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/kvgate/internal/dbx"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/applications"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/settings"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/users"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/values"
)

// RepositoryManager vends store implementations bound to a DBTX, so the
// same code path works on a plain pool and inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Applications(db dbx.DBTX) applications.Repository
	Users(db dbx.DBTX) users.Repository
	Tokens(db dbx.DBTX) tokens.Repository
	Values(db dbx.DBTX) values.Repository
	Settings(db dbx.DBTX) settings.Repository
}
