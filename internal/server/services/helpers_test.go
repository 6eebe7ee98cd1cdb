package services

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/kvgate/internal/cryptox"
	"github.com/dmitrijs2005/kvgate/internal/logging"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"github.com/dmitrijs2005/kvgate/internal/server/models"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/memory"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "secretKey"
	testAPIKey   = "abc"
	testAppID    = int64(1)
	testUserID   = int64(23)
	testEmail    = "a@x.com"
	testPassword = "p"
)

type fixture struct {
	rm   *memory.Manager
	db   *sql.DB
	mock sqlmock.Sqlmock
	now  time.Time

	authn *Authenticator
	kv    *ValueService
	gw    *Gateway
	logs  *bytes.Buffer
}

// newFixture seeds one active application and one user. The sqlmock db only
// sees transaction control; all statements go to the memory manager.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		rm:   memory.NewManager(),
		db:   db,
		mock: mock,
		now:  time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		logs: &bytes.Buffer{},
	}

	log, err := logging.New("debug", f.logs)
	require.NoError(t, err)

	f.authn = NewAuthenticator(db, f.rm, []byte(testSecret), log)
	f.authn.now = f.clock
	f.kv = NewValueService(db, f.rm, log)
	f.kv.now = f.clock
	f.gw = newGateway(db, f.rm, f.authn, f.kv, log)

	f.rm.AddApplication(models.Application{ID: testAppID, APIKey: testAPIKey, Status: models.StatusActive})
	f.rm.AddUser(models.User{ID: testUserID, Email: testEmail, Password: cryptox.CredentialHash([]byte(testSecret), testEmail, testPassword)})
	f.rm.SetSetting("api_enabled", "1")

	return f
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

// login issues a token through the Authenticator.
func (f *fixture) login(t *testing.T) string {
	t.Helper()
	tok, err := f.authn.Authenticate(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	f.rm.ResetCalls()
	return tok
}

func (f *fixture) call(method api.Method, token string, data map[string]any) *api.Response {
	return f.gw.Handle(context.Background(), api.NewRequestEnvelope(testAPIKey, method, token, data))
}

func requireCode(t *testing.T, err error, want api.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, want, api.CodeOf(err), "error: %v", err)
}
