// Package memory is an in-process RepositoryManager used by service and
// transport tests. It keeps every table in maps behind one mutex, records
// the order in which store operations were called and lets tests inject
// failures per operation.
package memory

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/dbx"
	"github.com/dmitrijs2005/kvgate/internal/server/models"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/applications"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/settings"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/tokens"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/users"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/values"
)

// Operation names as they appear in Calls and Fail.
const (
	OpFindApplication  = "applications.FindByAPIKey"
	OpIncrementCounter = "applications.IncrementRequestCount"
	OpFindUsers        = "users.FindByEmail"
	OpCreateToken      = "tokens.Create"
	OpFindToken        = "tokens.Find"
	OpUpsertValue      = "values.Upsert"
	OpFindValue        = "values.Find"
	OpDeleteValue      = "values.Delete"
	OpGetSetting       = "settings.Get"
)

type Manager struct {
	mu sync.Mutex

	apps     map[string]*models.Application
	users    []*models.User
	tokens   map[string]*models.Token
	values   map[string]*models.StoredValue
	settings map[string]string

	nextTokenID int64
	calls       []string
	failures    map[string]error
}

var _ repomanager.RepositoryManager = (*Manager)(nil)

func NewManager() *Manager {
	return &Manager{
		apps:     map[string]*models.Application{},
		tokens:   map[string]*models.Token{},
		values:   map[string]*models.StoredValue{},
		settings: map[string]string{},
		failures: map[string]error{},
	}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *Manager) Applications(dbx.DBTX) applications.Repository { return &appRepo{m} }
func (m *Manager) Users(dbx.DBTX) users.Repository               { return &userRepo{m} }
func (m *Manager) Tokens(dbx.DBTX) tokens.Repository             { return &tokenRepo{m} }
func (m *Manager) Values(dbx.DBTX) values.Repository             { return &valueRepo{m} }
func (m *Manager) Settings(dbx.DBTX) settings.Repository         { return &settingRepo{m} }

// Seeding and inspection helpers.

func (m *Manager) AddApplication(a models.Application) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps[a.APIKey] = &a
}

func (m *Manager) Application(apiKey string) (models.Application, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.apps[apiKey]
	if !ok {
		return models.Application{}, false
	}
	return *a, true
}

func (m *Manager) AddUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, &u)
}

func (m *Manager) AddToken(t models.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTokenID++
	t.ID = m.nextTokenID
	m.tokens[t.Token] = &t
}

// TokenCount reports how many tokens are stored.
func (m *Manager) TokenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

func (m *Manager) Value(storageKey string) (models.StoredValue, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[storageKey]
	if !ok {
		return models.StoredValue{}, false
	}
	return *v, true
}

// PutValue stores v as is, bypassing the ownership check of Upsert.
func (m *Manager) PutValue(v models.StoredValue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[v.StorageKey] = &v
}

func (m *Manager) SetSetting(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = value
}

// Fail makes every later call of op return err. A nil err clears it.
func (m *Manager) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns the recorded operation names in call order.
func (m *Manager) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *Manager) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// enter records op and returns its injected failure. The caller must hold mu.
func (m *Manager) enter(op string) error {
	m.calls = append(m.calls, op)
	return m.failures[op]
}

type appRepo struct{ m *Manager }

func (r *appRepo) FindByAPIKey(ctx context.Context, apiKey string) (*models.Application, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.enter(OpFindApplication); err != nil {
		return nil, err
	}
	a, ok := r.m.apps[apiKey]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *appRepo) IncrementRequestCount(ctx context.Context, apiKey string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.enter(OpIncrementCounter); err != nil {
		return err
	}
	if a, ok := r.m.apps[apiKey]; ok {
		a.RequestCount++
	}
	return nil
}

type userRepo struct{ m *Manager }

func (r *userRepo) FindByEmail(ctx context.Context, email string) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.enter(OpFindUsers); err != nil {
		return nil, err
	}
	var out []*models.User
	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

type tokenRepo struct{ m *Manager }

func (r *tokenRepo) Create(ctx context.Context, t *models.Token) (*models.Token, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.enter(OpCreateToken); err != nil {
		return nil, err
	}
	r.m.nextTokenID++
	cp := *t
	cp.ID = r.m.nextTokenID
	r.m.tokens[cp.Token] = &cp
	t.ID = cp.ID
	return t, nil
}

func (r *tokenRepo) Find(ctx context.Context, token string) (*models.Token, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.enter(OpFindToken); err != nil {
		return nil, err
	}
	t, ok := r.m.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

type valueRepo struct{ m *Manager }

func (r *valueRepo) Upsert(ctx context.Context, v *models.StoredValue) (values.UpsertResult, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.enter(OpUpsertValue); err != nil {
		return 0, err
	}
	cur, ok := r.m.values[v.StorageKey]
	if !ok {
		cp := *v
		r.m.values[v.StorageKey] = &cp
		return values.Inserted, nil
	}
	if cur.AppID != v.AppID || cur.UserID != v.UserID {
		return 0, values.ErrNoRowAffected
	}
	cur.Value = v.Value
	cur.UpdatedAt = v.UpdatedAt
	return values.Updated, nil
}

func (r *valueRepo) Find(ctx context.Context, storageKey string, appID, userID int64) (*models.StoredValue, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.enter(OpFindValue); err != nil {
		return nil, err
	}
	v, ok := r.m.values[storageKey]
	if !ok || v.AppID != appID || v.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *valueRepo) Delete(ctx context.Context, storageKey string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.enter(OpDeleteValue); err != nil {
		return 0, err
	}
	if _, ok := r.m.values[storageKey]; !ok {
		return 0, nil
	}
	delete(r.m.values, storageKey)
	return 1, nil
}

type settingRepo struct{ m *Manager }

func (r *settingRepo) Get(ctx context.Context, key string) (string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.enter(OpGetSetting); err != nil {
		return "", err
	}
	v, ok := r.m.settings[key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}
