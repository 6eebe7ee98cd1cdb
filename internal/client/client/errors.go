package client

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/kvgate/internal/server/api"
)

var (
	ErrUnavailable     = errors.New("server unavailable")
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// CodeError is a response with a code other than api.CodeOK.
type CodeError struct {
	Code    api.Code
	Outcome api.Outcome
}

func (e *CodeError) Error() string {
	if text, ok := codeText[e.Code]; ok {
		return fmt.Sprintf("gateway error %d: %s", e.Code, text)
	}
	return fmt.Sprintf("gateway error %d", e.Code)
}

var codeText = map[api.Code]string{
	api.CodeUnknownAction:    "unknown action",
	api.CodeUnknownAPIKey:    "unknown API key",
	api.CodeMalformedRequest: "malformed request",
	api.CodeInvalidMethod:    "invalid method",
	api.CodeFallthrough:      "internal error",
	api.CodeInvalidToken:     "invalid token",
	api.CodeTokenExpired:     "token expired",
	api.CodeNotFound:         "not found or authentication required",
	api.CodeStorageFailure:   "storage failure or bad value type",
	api.CodeInvalidParameter: "bad credentials or missing parameter",
	api.CodeAPIDisabled:      "API disabled",
}

// CodeOf returns the gateway code carried by err, or 0.
func CodeOf(err error) api.Code {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return 0
}
