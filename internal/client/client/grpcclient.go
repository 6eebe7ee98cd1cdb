package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/kvgate/internal/common"
	"github.com/dmitrijs2005/kvgate/internal/server/api"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Value is a stored value as returned by getKey. Timestamps are kept in the
// gateway's text form.
type Value struct {
	Value   string
	Created string
	Updated string
}

// GRPCClient talks to one gateway on behalf of one application. It keeps
// the session token issued by Authenticate.
type GRPCClient struct {
	conn   *grpc.ClientConn
	apiKey string
	token  string
}

// NewGRPCClient creates a client for addr. Extra dial options are appended
// after the defaults (insecure transport, request id interceptor).
func NewGRPCClient(addr, apiKey string, opts ...grpc.DialOption) (*GRPCClient, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(requestIDInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}

	return &GRPCClient{conn: conn, apiKey: apiKey}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// Token returns the current session token, or "".
func (c *GRPCClient) Token() string { return c.token }

// SetToken replaces the session token.
func (c *GRPCClient) SetToken(token string) { c.token = token }

// requestIDInterceptor tags every call with a fresh request id.
func requestIDInterceptor(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	ctx = metadata.AppendToOutgoingContext(ctx, strings.ToLower(common.RequestIDHeaderName), uuid.NewString())
	return invoker(ctx, method, req, reply, cc, opts...)
}

// Call sends one request and returns the data of a CodeOK response. Any
// other code is a *CodeError.
func (c *GRPCClient) Call(ctx context.Context, method api.Method, token string, data map[string]any) (map[string]any, error) {
	in, err := structpb.NewStruct(api.NewRequestEnvelope(c.apiKey, method, token, data))
	if err != nil {
		return nil, fmt.Errorf("error encoding request: %w", err)
	}

	out := &structpb.Struct{}
	var trailer metadata.MD
	if err := c.conn.Invoke(ctx, common.GatewayCallMethod, in, out, grpc.Trailer(&trailer)); err != nil {
		if status.Code(err) == codes.Unavailable {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	resp, err := api.ParseResponse(out.AsMap())
	if err != nil {
		return nil, err
	}

	if resp.Code != api.CodeOK {
		ce := &CodeError{Code: resp.Code}
		if v := trailer.Get(common.OutcomeTrailerName); len(v) > 0 {
			ce.Outcome = api.Outcome(v[0])
		}
		return nil, ce
	}

	return resp.Data, nil
}

// Authenticate exchanges credentials for a session token and keeps it.
func (c *GRPCClient) Authenticate(ctx context.Context, email, password string) (string, error) {
	data, err := c.Call(ctx, api.MethodAuthenticate, c.token, map[string]any{
		api.FieldEmail:    email,
		api.FieldPassword: password,
	})
	if err != nil {
		return "", err
	}

	token, err := stringField(data, "token")
	if err != nil {
		return "", err
	}
	c.token = token
	return token, nil
}

// SaveKey stores value under key and returns the storage key.
func (c *GRPCClient) SaveKey(ctx context.Context, key, value string) (string, error) {
	if c.token == "" {
		return "", ErrNotLoggedIn
	}
	data, err := c.Call(ctx, api.MethodSaveKey, c.token, map[string]any{"key": key, "value": value})
	if err != nil {
		return "", err
	}
	return stringField(data, "key")
}

func (c *GRPCClient) GetKey(ctx context.Context, key string) (*Value, error) {
	if c.token == "" {
		return nil, ErrNotLoggedIn
	}
	data, err := c.Call(ctx, api.MethodGetKey, c.token, map[string]any{"key": key})
	if err != nil {
		return nil, err
	}

	v := &Value{}
	if v.Value, err = stringField(data, "value"); err != nil {
		return nil, err
	}
	v.Created, _ = data["created"].(string)
	v.Updated, _ = data["updated"].(string)
	return v, nil
}

func (c *GRPCClient) DeleteKey(ctx context.Context, key string) error {
	if c.token == "" {
		return ErrNotLoggedIn
	}
	_, err := c.Call(ctx, api.MethodDeleteKey, c.token, map[string]any{"key": key})
	return err
}

func stringField(data map[string]any, name string) (string, error) {
	s, ok := data[name].(string)
	if !ok {
		return "", fmt.Errorf("%w: missing %s", ErrUnexpectedReply, name)
	}
	return s, nil
}
