// Package services contains the gateway's request pipeline: the
// Authenticator, the Verifier that sequences the request checks, the
// Dispatcher with its fixed handler table, the key-value handlers and the
// Gateway that ties them together.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/cryptox"
	"github.com/dmitrijs2005/kvgate/internal/logging"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"github.com/dmitrijs2005/kvgate/internal/server/auth"
	"github.com/dmitrijs2005/kvgate/internal/server/models"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/kvgate/internal/timex"
)

// TokenMaxAge is the largest token age, in months*30+days, still accepted.
const TokenMaxAge = 30

// Authenticator validates API keys and session tokens and verifies user
// credentials.
type Authenticator struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	secret      []byte
	now         func() time.Time
	log         logging.Logger
}

func NewAuthenticator(db *sql.DB, m repomanager.RepositoryManager, secret []byte, log logging.Logger) *Authenticator {
	return &Authenticator{
		db:          db,
		repomanager: m,
		secret:      secret,
		now:         time.Now,
		log:         log.With("module", "authenticator"),
	}
}

// ValidateAPIKey returns the active application owning apiKey. An unknown
// key is CodeUnknownAPIKey; an inactive application answers with its
// status value as the code.
func (a *Authenticator) ValidateAPIKey(ctx context.Context, apiKey string) (*models.Application, error) {
	app, err := a.repomanager.Applications(a.db).FindByAPIKey(ctx, apiKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, api.Reject(api.CodeUnknownAPIKey, err)
		}
		return nil, api.Fault(api.CodeStorageFailure, fmt.Errorf("error searching application: %w", err))
	}

	if !app.Active() {
		return nil, api.Reject(api.Code(app.Status), fmt.Errorf("application %d is not active (status %d)", app.ID, app.Status))
	}

	return app, nil
}

// ValidateToken returns the id of the user owning token.
func (a *Authenticator) ValidateToken(ctx context.Context, token string) (int64, error) {
	stored, err := a.repomanager.Tokens(a.db).Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, api.Reject(api.CodeInvalidToken, common.ErrInvalidToken)
		}
		return 0, api.Fault(api.CodeStorageFailure, fmt.Errorf("error searching token: %w", err))
	}

	if timex.ThirtyDayAge(stored.CreatedAt, a.now()) > TokenMaxAge {
		return 0, api.Reject(api.CodeTokenExpired, common.ErrTokenExpired)
	}

	userID, err := auth.GetUserIDFromToken(token, a.secret)
	if err != nil {
		return 0, api.Reject(api.CodeInvalidToken, err)
	}
	if userID != stored.UserID {
		return 0, api.Reject(api.CodeInvalidToken, fmt.Errorf("%w: subject %d, owner %d", common.ErrInvalidToken, userID, stored.UserID))
	}

	return stored.UserID, nil
}

// Authenticate checks email and password against the stored credential
// hashes and issues a new token. Exactly one user must match.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", api.Reject(api.CodeInvalidParameter, common.ErrorInvalidParameter)
	}

	candidates, err := a.repomanager.Users(a.db).FindByEmail(ctx, email)
	if err != nil {
		return "", api.Fault(api.CodeStorageFailure, fmt.Errorf("error searching user: %w", err))
	}

	candidate := cryptox.CredentialHash(a.secret, email, password)

	var matched *models.User
	matches := 0
	for _, u := range candidates {
		if cryptox.CredentialMatches(u.Password, candidate) {
			matched = u
			matches++
		}
	}
	if matches != 1 {
		return "", api.Reject(api.CodeInvalidParameter, common.ErrorUnauthorized)
	}

	now := a.now()
	value, err := auth.GenerateToken(matched.ID, a.secret, now)
	if err != nil {
		return "", api.Fault(api.CodeInvalidParameter, fmt.Errorf("error generating token: %w", err))
	}

	if _, err := a.repomanager.Tokens(a.db).Create(ctx, &models.Token{Token: value, UserID: matched.ID, CreatedAt: now}); err != nil {
		return "", api.Fault(api.CodeInvalidParameter, fmt.Errorf("error saving token: %w", err))
	}

	a.log.Debug(ctx, "token issued", "user_id", matched.ID)
	return value, nil
}
