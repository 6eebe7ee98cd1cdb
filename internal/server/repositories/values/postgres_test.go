package values

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	upsertQuery = `(?s)^INSERT\s+INTO\s+kv_data\s*\(key,\s*app_id,\s*user_id,\s*value,\s*created,\s*updated\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$5\)\s*ON\s+CONFLICT\s*\(key\)\s*DO\s+UPDATE\s+SET.*RETURNING\s+\(xmax\s*=\s*0\)\s+AS\s+inserted\s*$`
	findQuery   = `(?s)^SELECT\s+key,\s*app_id,\s*user_id,\s*value,\s*created,\s*updated\s+FROM\s+kv_data\s+WHERE\s+key\s*=\s*\$1\s+AND\s+app_id\s*=\s*\$2\s+AND\s+user_id\s*=\s*\$3\s*$`
	deleteQuery = `(?s)^DELETE\s+FROM\s+kv_data\s+WHERE\s+key\s*=\s*\$1\s*$`
)

func sample(now time.Time) *models.StoredValue {
	return &models.StoredValue{StorageKey: "k64", AppID: 1, UserID: 23, Value: "blue", CreatedAt: now, UpdatedAt: now}
}

func TestUpsert_Inserted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(upsertQuery).
		WithArgs("k64", int64(1), int64(23), "blue", now).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(true))

	got, err := repo.Upsert(context.Background(), sample(now))
	if err != nil || got != Inserted {
		t.Fatalf("Upsert: got (%v, %v), want Inserted", got, err)
	}
}

func TestUpsert_Updated(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(upsertQuery).
		WithArgs("k64", int64(1), int64(23), "blue", now).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}).AddRow(false))

	got, err := repo.Upsert(context.Background(), sample(now))
	if err != nil || got != Updated {
		t.Fatalf("Upsert: got (%v, %v), want Updated", got, err)
	}
}

func TestUpsert_NoRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(upsertQuery).
		WithArgs("k64", int64(1), int64(23), "blue", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"inserted"}))

	_, err := repo.Upsert(context.Background(), sample(time.Now()))
	if !errors.Is(err, ErrNoRowAffected) {
		t.Fatalf("want ErrNoRowAffected, got %v", err)
	}
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(upsertQuery).
		WithArgs("k64", int64(1), int64(23), "blue", sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	_, err := repo.Upsert(context.Background(), sample(time.Now()))
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFind_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)
	rows := sqlmock.NewRows([]string{"key", "app_id", "user_id", "value", "created", "updated"}).
		AddRow("k64", int64(1), int64(23), "blue", created, updated)
	mock.ExpectQuery(findQuery).WithArgs("k64", int64(1), int64(23)).WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "k64", 1, 23)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.Value != "blue" || !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected value: %+v", got)
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQuery).WithArgs("k64", int64(2), int64(23)).WillReturnError(sql.ErrNoRows)

	if _, err := repo.Find(context.Background(), "k64", 2, 23); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestFind_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(findQuery).WithArgs("k64", int64(1), int64(23)).WillReturnError(errors.New("db err"))

	_, err := repo.Find(context.Background(), "k64", 1, 23)
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQuery).WithArgs("k64").WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Delete(context.Background(), "k64")
	if err != nil || n != 1 {
		t.Fatalf("Delete: got (%d, %v)", n, err)
	}
}

func TestDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQuery).WithArgs("k64").WillReturnError(errors.New("db err"))

	_, err := repo.Delete(context.Background(), "k64")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete_RowsAffectedError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(deleteQuery).WithArgs("k64").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("no count")))

	_, err := repo.Delete(context.Background(), "k64")
	if err == nil || !regexp.MustCompile(`db error: .*no count`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
