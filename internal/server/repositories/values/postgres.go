package values

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/dbx"
	"github.com/dmitrijs2005/kvgate/internal/server/models"
)

// ErrNoRowAffected is returned when an upsert neither inserted nor updated.
var ErrNoRowAffected = errors.New("no row affected")

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert relies on xmax being 0 only for freshly inserted tuples. The
// conflict branch is restricted to the owning application and user.
func (r *PostgresRepository) Upsert(ctx context.Context, v *models.StoredValue) (UpsertResult, error) {
	query :=
		`INSERT INTO kv_data (key, app_id, user_id, value, created, updated)
         VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated = EXCLUDED.updated
		 WHERE kv_data.app_id = EXCLUDED.app_id AND kv_data.user_id = EXCLUDED.user_id
		 RETURNING (xmax = 0) AS inserted
		 `

	var inserted bool
	err := r.db.QueryRowContext(ctx, query, v.StorageKey, v.AppID, v.UserID, v.Value, v.UpdatedAt).Scan(&inserted)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNoRowAffected
		}
		return 0, fmt.Errorf("db error: %w", err)
	}

	if inserted {
		return Inserted, nil
	}
	return Updated, nil
}

func (r *PostgresRepository) Find(ctx context.Context, storageKey string, appID, userID int64) (*models.StoredValue, error) {
	query :=
		`SELECT key, app_id, user_id, value, created, updated FROM kv_data
		 WHERE key = $1 AND app_id = $2 AND user_id = $3
		 `

	v := &models.StoredValue{}
	err := r.db.QueryRowContext(ctx, query, storageKey, appID, userID).
		Scan(&v.StorageKey, &v.AppID, &v.UserID, &v.Value, &v.CreatedAt, &v.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return v, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, storageKey string) (int64, error) {
	query :=
		`DELETE FROM kv_data
		 WHERE key = $1
		 `

	res, err := r.db.ExecContext(ctx, query, storageKey)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
