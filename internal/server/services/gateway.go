package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/logging"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"github.com/dmitrijs2005/kvgate/internal/server/config"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/settings"
)

// APIDisabledValue switches the whole gateway off when stored under
// settings.APIEnabledKey.
const APIDisabledValue = "0"

// Gateway turns one request envelope into exactly one response.
type Gateway struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	verifier    *Verifier
	dispatcher  *Dispatcher
	log         logging.Logger
}

// NewGateway wires the Authenticator, ValueService, Dispatcher and
// Verifier from cfg.
func NewGateway(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, log logging.Logger) *Gateway {
	authn := NewAuthenticator(db, m, []byte(cfg.SecretKey), log)
	kv := NewValueService(db, m, log)
	return newGateway(db, m, authn, kv, log)
}

func newGateway(db *sql.DB, m repomanager.RepositoryManager, authn *Authenticator, kv *ValueService, log logging.Logger) *Gateway {
	d := NewDispatcher(authn, kv)
	return &Gateway{
		db:          db,
		repomanager: m,
		verifier:    NewVerifier(authn, d),
		dispatcher:  d,
		log:         log.With("module", "gateway"),
	}
}

// Handle runs the pipeline on a decoded envelope. A nil envelope is a
// malformed request. Handle never returns nil.
func (g *Gateway) Handle(ctx context.Context, envelope map[string]any) *api.Response {
	data, err := g.handle(ctx, envelope)
	if err != nil {
		resp := api.FromError(err)
		if resp.Fault {
			g.log.Error(ctx, "request failed", "code", resp.Code, "error", err)
		} else {
			g.log.Info(ctx, "request rejected", "code", resp.Code, "error", err)
		}
		return resp
	}
	return api.Success(data)
}

func (g *Gateway) handle(ctx context.Context, envelope map[string]any) (map[string]any, error) {
	if err := g.checkEnabled(ctx); err != nil {
		return nil, err
	}

	v, err := g.verifier.Verify(ctx, envelope)
	if err != nil {
		return nil, err
	}

	// a login without a token ends verification and is not counted
	if v.Request.HasToken() {
		if err := g.repomanager.Applications(g.db).IncrementRequestCount(ctx, v.Request.APIKey); err != nil {
			return nil, api.Fault(api.CodeStorageFailure, fmt.Errorf("error counting request: %w", err))
		}
	}

	return g.dispatcher.Dispatch(ctx, v.Method, &Call{App: v.App, UserID: v.UserID, Data: v.Request.Data})
}

// checkEnabled reads the global switch. A missing setting means enabled.
func (g *Gateway) checkEnabled(ctx context.Context) error {
	value, err := g.repomanager.Settings(g.db).Get(ctx, settings.APIEnabledKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return api.Fault(api.CodeStorageFailure, fmt.Errorf("error reading api switch: %w", err))
	}
	if value == APIDisabledValue {
		return api.Reject(api.CodeAPIDisabled, nil)
	}
	return nil
}
