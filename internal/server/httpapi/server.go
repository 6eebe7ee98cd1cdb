// Package httpapi exposes the gateway as a single JSON-over-HTTP endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/kvgate/internal/logging"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"github.com/gorilla/mux"
)

// MaxBodySize caps the request body.
const MaxBodySize = 1 << 20

// Gateway runs the request pipeline on a decoded envelope.
type Gateway interface {
	Handle(ctx context.Context, envelope map[string]any) *api.Response
}

type HTTPServer struct {
	address string
	gateway Gateway
	timeout time.Duration
	logger  logging.Logger
}

func NewHTTPServer(address string, l logging.Logger, g Gateway, timeout time.Duration) *HTTPServer {
	return &HTTPServer{
		address: address,
		gateway: g,
		timeout: timeout,
		logger:  l.With("module", "http_server"),
	}
}

// Handler returns the root handler: the gateway endpoint, a health probe and
// code 2 for anything else.
func (s *HTTPServer) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api", s.handleCall)
	r.HandleFunc("/api/index", s.handleCall)

	unknown := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, &api.Response{Code: api.CodeUnknownAction})
	})
	r.NotFoundHandler = unknown
	r.MethodNotAllowedHandler = unknown

	return s.withRequestID(s.withLogging(r))
}

func (s *HTTPServer) handleCall(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		s.logger.Info(ctx, "unreadable request body", "error", err)
		body = nil
	}

	// Anything that does not decode to an object reaches the pipeline as
	// nil and is rejected as malformed there.
	var envelope map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &envelope); err != nil {
			envelope = nil
		}
	}

	resp := s.gateway.Handle(ctx, envelope)
	setOutcome(r, resp)
	writeResponse(w, resp)
}

func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// writeResponse answers 500 for internal faults and 200 otherwise; the body
// is always the response envelope.
func writeResponse(w http.ResponseWriter, resp *api.Response) {
	status := http.StatusOK
	if resp.Outcome() == api.OutcomeFault {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
