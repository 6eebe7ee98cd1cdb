package services

import (
	"context"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"github.com/dmitrijs2005/kvgate/internal/server/models"
)

// Verified is a request that passed every check. UserID is zero for an
// unauthenticated authenticate call.
type Verified struct {
	Request *api.Request
	Method  api.Method
	App     *models.Application
	UserID  int64
}

// Verifier runs the request checks in order: shape, API key, method,
// authentication. The first failing check ends verification.
type Verifier struct {
	authn      *Authenticator
	dispatcher *Dispatcher
}

func NewVerifier(authn *Authenticator, d *Dispatcher) *Verifier {
	return &Verifier{authn: authn, dispatcher: d}
}

func (v *Verifier) Verify(ctx context.Context, envelope map[string]any) (*Verified, error) {
	req, err := api.ParseRequest(envelope)
	if err != nil {
		return nil, err
	}

	app, err := v.authn.ValidateAPIKey(ctx, req.APIKey)
	if err != nil {
		return nil, err
	}

	method, ok := api.ParseMethod(req.Method)
	if !ok || !v.dispatcher.Has(method) {
		return nil, api.Reject(api.CodeInvalidMethod, nil)
	}

	out := &Verified{Request: req, Method: method, App: app}

	switch {
	case req.HasToken():
		if out.UserID, err = v.authn.ValidateToken(ctx, req.Token); err != nil {
			return nil, err
		}
	case method != api.MethodAuthenticate:
		return nil, api.Reject(api.CodeNotFound, common.ErrorUnauthorized)
	}

	return out, nil
}
