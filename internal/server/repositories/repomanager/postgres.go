// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and the embedded goose schema.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/kvgate/internal/dbx"
	"github.com/dmitrijs2005/kvgate/internal/server/migrations"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/applications"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/settings"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/users"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/values"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Applications(db dbx.DBTX) applications.Repository {
	return applications.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Tokens(db dbx.DBTX) tokens.Repository {
	return tokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Values(db dbx.DBTX) values.Repository {
	return values.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Settings(db dbx.DBTX) settings.Repository {
	return settings.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded baseline schema.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
