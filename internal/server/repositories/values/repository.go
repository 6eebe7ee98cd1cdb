// Package values declares the store contract for the per-user key-value
// table and its PostgreSQL implementation.
package values

import (
	"context"

	"github.com/dmitrijs2005/kvgate/internal/server/models"
)

// UpsertResult tells which branch of an upsert ran.
type UpsertResult int

const (
	Inserted UpsertResult = iota + 1
	Updated
)

type Repository interface {
	// Upsert inserts v, or updates value and UpdatedAt of the existing row
	// with the same storage key, in one atomic statement. CreatedAt is only
	// written on insert.
	Upsert(ctx context.Context, v *models.StoredValue) (UpsertResult, error)

	// Find returns the row matching all three columns; common.ErrorNotFound
	// when absent.
	Find(ctx context.Context, storageKey string, appID, userID int64) (*models.StoredValue, error)

	// Delete removes the row by primary key and reports how many rows went.
	Delete(ctx context.Context, storageKey string) (int64, error)
}
