package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/dbx"
	"github.com/dmitrijs2005/kvgate/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByAPIKey(ctx context.Context, apiKey string) (*models.Application, error) {
	query :=
		`SELECT app_id, api_key, api_status, request_count FROM api_keys
		 WHERE api_key = $1
		 `

	app := &models.Application{}
	err := r.db.QueryRowContext(ctx, query, apiKey).Scan(&app.ID, &app.APIKey, &app.Status, &app.RequestCount)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return app, nil
}

func (r *PostgresRepository) IncrementRequestCount(ctx context.Context, apiKey string) error {
	query :=
		`UPDATE api_keys SET request_count = request_count + 1
		 WHERE api_key = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, apiKey); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
