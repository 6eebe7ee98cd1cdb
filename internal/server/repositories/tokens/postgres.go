package tokens

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

func (r *PostgresRepository) Create(ctx context.Context, token *models.Token) (*models.Token, error) {
	query :=
		`INSERT INTO tokens (token, user_id, created)
         VALUES ($1, $2, $3)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query, token.Token, token.UserID, token.CreatedAt).Scan(&token.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return token, nil
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.Token, error) {
	query :=
		`SELECT id, token, user_id, created FROM tokens
		 WHERE token = $1
		 `

	t := &models.Token{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&t.ID, &t.Token, &t.UserID, &t.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return t, nil
}
