package grpc

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/cryptox"
	"github.com/dmitrijs2005/kvgate/internal/logging"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"github.com/dmitrijs2005/kvgate/internal/server/config"
	"github.com/dmitrijs2005/kvgate/internal/server/models"
	"github.com/dmitrijs2005/kvgate/internal/server/repositories/memory"
	"github.com/dmitrijs2005/kvgate/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type fakeGateway struct {
	got      map[string]any
	deadline bool
	resp     *api.Response
}

func (g *fakeGateway) Handle(ctx context.Context, envelope map[string]any) *api.Response {
	g.got = envelope
	_, g.deadline = ctx.Deadline()
	return g.resp
}

// dial serves s over an in-memory listener and returns a connected client.
func dial(t *testing.T, s *GRPCServer) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := s.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func invoke(t *testing.T, conn *grpc.ClientConn, envelope map[string]any, opts ...grpc.CallOption) *api.Response {
	t.Helper()

	in, err := structpb.NewStruct(envelope)
	require.NoError(t, err)
	out := &structpb.Struct{}
	require.NoError(t, conn.Invoke(context.Background(), common.GatewayCallMethod, in, out, opts...))

	resp, err := api.ParseResponse(out.AsMap())
	require.NoError(t, err)
	return resp
}

func TestCall_RoundTripAndTrailer(t *testing.T) {
	g := &fakeGateway{resp: api.Success(map[string]any{"key": "k"})}
	conn := dial(t, NewGRPCServer("", logging.NewNop(), g, time.Second))

	var trailer, header metadata.MD
	resp := invoke(t, conn, map[string]any{"request": map[string]any{"APIKey": "abc"}}, grpc.Trailer(&trailer), grpc.Header(&header))

	assert.Equal(t, api.CodeOK, resp.Code)
	assert.Equal(t, "k", resp.Data["key"])
	assert.Equal(t, []string{"success"}, trailer.Get(common.OutcomeTrailerName))
	assert.Len(t, header.Get("x-request-id"), 1)
	assert.Equal(t, map[string]any{"request": map[string]any{"APIKey": "abc"}}, g.got)
	assert.True(t, g.deadline)
}

func TestCall_FaultTrailer(t *testing.T) {
	g := &fakeGateway{resp: &api.Response{Code: api.CodeFallthrough, Fault: true}}
	conn := dial(t, NewGRPCServer("", logging.NewNop(), g, 0))

	var trailer metadata.MD
	resp := invoke(t, conn, map[string]any{}, grpc.Trailer(&trailer))

	assert.Equal(t, api.CodeFallthrough, resp.Code)
	assert.Nil(t, resp.Data)
	assert.Equal(t, []string{"fault"}, trailer.Get(common.OutcomeTrailerName))
	assert.False(t, g.deadline)
}

func TestInterceptor_LogsRequestIDAndCode(t *testing.T) {
	var logs bytes.Buffer
	l, err := logging.New("info", &logs)
	require.NoError(t, err)

	g := &fakeGateway{resp: &api.Response{Code: api.CodeUnknownAPIKey}}
	conn := dial(t, NewGRPCServer("", l, g, time.Second))

	ctx := metadata.AppendToOutgoingContext(context.Background(), "x-request-id", "req-7")
	in, err := structpb.NewStruct(map[string]any{})
	require.NoError(t, err)
	require.NoError(t, conn.Invoke(ctx, common.GatewayCallMethod, in, &structpb.Struct{}))

	assert.Contains(t, logs.String(), `"request_id":"req-7"`)
	assert.Contains(t, logs.String(), `"code":6`)
	assert.Contains(t, logs.String(), `"method":"/kvgate.Gateway/Call"`)
}

func TestCall_EndToEnd(t *testing.T) {
	const secret = "secretKey"
	rm := memory.NewManager()
	rm.AddApplication(models.Application{ID: 1, APIKey: "abc", Status: models.StatusActive})
	rm.AddUser(models.User{ID: 23, Email: "a@x.com", Password: cryptox.CredentialHash([]byte(secret), "a@x.com", "p")})
	gw := services.NewGateway(nil, rm, &config.Config{SecretKey: secret}, logging.NewNop())
	conn := dial(t, NewGRPCServer("", logging.NewNop(), gw, time.Second))

	resp := invoke(t, conn, api.NewRequestEnvelope("abc", api.MethodAuthenticate, "", map[string]any{"email": "a@x.com", "password": "p"}))
	require.Equal(t, api.CodeOK, resp.Code)
	token := resp.Data["token"].(string)

	resp = invoke(t, conn, api.NewRequestEnvelope("abc", api.MethodSaveKey, token, map[string]any{"key": "color", "value": "blue"}))
	require.Equal(t, api.CodeOK, resp.Code)
	assert.Equal(t, cryptox.DeriveStorageKey(1, 23, "color"), resp.Data["key"])

	var trailer metadata.MD
	resp = invoke(t, conn, api.NewRequestEnvelope("abc", api.MethodGetKey, token, map[string]any{"key": "nope"}), grpc.Trailer(&trailer))
	assert.Equal(t, api.CodeNotFound, resp.Code)
	assert.Equal(t, []string{"rejected"}, trailer.Get(common.OutcomeTrailerName))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.NewNop(), &fakeGateway{}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.NewNop(), &fakeGateway{}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}
