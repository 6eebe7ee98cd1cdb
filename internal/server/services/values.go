package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/cryptox"
	"github.com/dmitrijs2005/kvgate/internal/dbx"
	"github.com/dmitrijs2005/kvgate/internal/logging"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"github.com/dmitrijs2005/kvgate/internal/server/models"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/repomanager"
)

// TimestampLayout is how created and updated are rendered in responses.
const TimestampLayout = "2006-01-02 15:04:05"

// ValueService implements the per-user key-value operations. Every
// operation is scoped to one application and one user.
type ValueService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
	log         logging.Logger
}

func NewValueService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ValueService {
	return &ValueService{
		db:          db,
		repomanager: m,
		now:         time.Now,
		log:         log.With("module", "values"),
	}
}

// Save upserts value under the storage key derived from (appID, userID,
// key) and returns that storage key. An empty value is CodeInvalidParameter
// and a non-string value is CodeStorageFailure.
func (s *ValueService) Save(ctx context.Context, appID, userID int64, key string, value any) (string, error) {
	if key == "" || isEmptyValue(value) {
		return "", api.Reject(api.CodeInvalidParameter, common.ErrorInvalidParameter)
	}
	str, ok := value.(string)
	if !ok {
		return "", api.Reject(api.CodeStorageFailure, fmt.Errorf("%w: value must be a string, got %T", common.ErrorInvalidParameter, value))
	}

	now := s.now().UTC()
	v := &models.StoredValue{
		StorageKey: cryptox.DeriveStorageKey(appID, userID, key),
		AppID:      appID,
		UserID:     userID,
		Value:      str,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	res, err := s.repomanager.Values(s.db).Upsert(ctx, v)
	if err != nil {
		return "", api.Fault(api.CodeStorageFailure, fmt.Errorf("error saving value: %w", err))
	}

	s.log.Debug(ctx, "value saved", "app_id", appID, "user_id", userID, "result", res)
	return v.StorageKey, nil
}

// Get returns the value stored under the logical key.
func (s *ValueService) Get(ctx context.Context, appID, userID int64, key string) (*models.StoredValue, error) {
	if key == "" {
		return nil, api.Reject(api.CodeInvalidParameter, common.ErrorInvalidParameter)
	}

	v, err := s.repomanager.Values(s.db).Find(ctx, cryptox.DeriveStorageKey(appID, userID, key), appID, userID)
	if err != nil {
		return nil, notFoundOrFault(err, "error searching value")
	}
	return v, nil
}

// Delete removes the value stored under the logical key. The scoped lookup
// and the delete by primary key run in one transaction.
func (s *ValueService) Delete(ctx context.Context, appID, userID int64, key string) error {
	if key == "" {
		return api.Reject(api.CodeInvalidParameter, common.ErrorInvalidParameter)
	}

	storageKey := cryptox.DeriveStorageKey(appID, userID, key)

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Values(tx)

		v, err := repo.Find(ctx, storageKey, appID, userID)
		if err != nil {
			return notFoundOrFault(err, "error searching value")
		}

		n, err := repo.Delete(ctx, v.StorageKey)
		if err != nil {
			return api.Fault(api.CodeStorageFailure, fmt.Errorf("error deleting value: %w", err))
		}
		if n != 1 {
			return api.Reject(api.CodeNotFound, common.ErrorNotFound)
		}
		return nil
	})
}

func notFoundOrFault(err error, msg string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return api.Reject(api.CodeNotFound, err)
	}
	return api.Fault(api.CodeStorageFailure, fmt.Errorf("%s: %w", msg, err))
}

// isEmptyValue treats null, "", false, zero and empty containers as empty.
func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case map[string]any:
		return len(x) == 0
	case []any:
		return len(x) == 0
	}
	return false
}

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
