package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"github.com/dmitrijs2005/kvgate/internal/server/models"
)

// Call is a verified request as seen by a handler. UserID is zero when the
// caller has not authenticated yet.
type Call struct {
	App    *models.Application
	UserID int64
	Data   map[string]any
}

// Handler runs one method. A nil data map with a nil error is a plain
// CodeOK response.
type Handler func(ctx context.Context, call *Call) (map[string]any, error)

// Dispatcher maps allowed methods to their handlers. The table is fixed at
// construction.
type Dispatcher struct {
	handlers map[api.Method]Handler
}

func NewDispatcher(authn *Authenticator, kv *ValueService) *Dispatcher {
	return &Dispatcher{handlers: map[api.Method]Handler{
		api.MethodAuthenticate: authenticateHandler(authn),
		api.MethodSaveKey:      saveKeyHandler(kv),
		api.MethodGetKey:       getKeyHandler(kv),
		api.MethodDeleteKey:    deleteKeyHandler(kv),
	}}
}

// Has reports whether m has a handler.
func (d *Dispatcher) Has(m api.Method) bool {
	_, ok := d.handlers[m]
	return ok
}

// Dispatch runs the handler of m. A missing handler is CodeFallthrough.
func (d *Dispatcher) Dispatch(ctx context.Context, m api.Method, call *Call) (map[string]any, error) {
	h, ok := d.handlers[m]
	if !ok {
		return nil, api.Fault(api.CodeFallthrough, fmt.Errorf("no handler for method %q", m))
	}
	return h(ctx, call)
}

func authenticateHandler(authn *Authenticator) Handler {
	return func(ctx context.Context, call *Call) (map[string]any, error) {
		email, err := stringParam(call.Data, api.FieldEmail)
		if err != nil {
			return nil, err
		}
		password, err := stringParam(call.Data, api.FieldPassword)
		if err != nil {
			return nil, err
		}

		token, err := authn.Authenticate(ctx, email, password)
		if err != nil {
			return nil, err
		}
		return map[string]any{"token": token}, nil
	}
}

func saveKeyHandler(kv *ValueService) Handler {
	return func(ctx context.Context, call *Call) (map[string]any, error) {
		key, err := stringParam(call.Data, "key")
		if err != nil {
			return nil, err
		}

		storageKey, err := kv.Save(ctx, call.App.ID, call.UserID, key, call.Data["value"])
		if err != nil {
			return nil, err
		}
		return map[string]any{"key": storageKey}, nil
	}
}

func getKeyHandler(kv *ValueService) Handler {
	return func(ctx context.Context, call *Call) (map[string]any, error) {
		key, err := stringParam(call.Data, "key")
		if err != nil {
			return nil, err
		}

		v, err := kv.Get(ctx, call.App.ID, call.UserID, key)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"value":   v.Value,
			"created": FormatTimestamp(v.CreatedAt),
			"updated": FormatTimestamp(v.UpdatedAt),
		}, nil
	}
}

func deleteKeyHandler(kv *ValueService) Handler {
	return func(ctx context.Context, call *Call) (map[string]any, error) {
		key, err := stringParam(call.Data, "key")
		if err != nil {
			return nil, err
		}
		return nil, kv.Delete(ctx, call.App.ID, call.UserID, key)
	}
}

// stringParam returns data[name] when it is a non-empty string.
func stringParam(data map[string]any, name string) (string, error) {
	s, ok := data[name].(string)
	if !ok || s == "" {
		return "", api.Reject(api.CodeInvalidParameter, fmt.Errorf("%w: %s", common.ErrorInvalidParameter, name))
	}
	return s, nil
}
