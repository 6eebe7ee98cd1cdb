package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"github.com/google/uuid"
)

type ctxKey string

const (
	requestIDKey ctxKey = "requestID"
	outcomeKey   ctxKey = "outcome"
)

// RequestID returns the id assigned to the request, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// outcomeSlot lets the endpoint hand code and outcome back to the logging
// middleware.
type outcomeSlot struct {
	code    api.Code
	outcome api.Outcome
}

func setOutcome(r *http.Request, resp *api.Response) {
	if slot, ok := r.Context().Value(outcomeKey).(*outcomeSlot); ok {
		slot.code = resp.Code
		slot.outcome = resp.Outcome()
	}
}

// withRequestID keeps a caller-supplied X-Request-Id or assigns a new one,
// and echoes it in the response.
func (s *HTTPServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *HTTPServer) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		slot := &outcomeSlot{}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), outcomeKey, slot)))

		args := []any{
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		}
		if slot.outcome != "" {
			args = append(args, "code", slot.code, "outcome", slot.outcome)
		}
		s.logger.Info(r.Context(), "http request", args...)
	})
}
