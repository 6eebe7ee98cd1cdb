package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/kvgate/internal/client/client"
	"github.com/dmitrijs2005/kvgate/internal/client/config"
)

// Client is the part of client.GRPCClient the shell uses.
type Client interface {
	Authenticate(ctx context.Context, email, password string) (string, error)
	SaveKey(ctx context.Context, key, value string) (string, error)
	GetKey(ctx context.Context, key string) (*client.Value, error)
	DeleteKey(ctx context.Context, key string) error
	Token() string
	SetToken(token string)
	Close() error
}

type App struct {
	config *config.Config
	client Client
	reader *bufio.Reader
	out    io.Writer
	email  string
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.APIKey)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, cl Client, in io.Reader, out io.Writer) *App {
	return &App{config: c, client: cl, reader: bufio.NewReader(in), out: out}
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.client.Token() != ""
}

// callContext bounds one gateway call by the configured timeout.
func (a *App) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout > 0 {
		return context.WithTimeout(ctx, a.config.RequestTimeout)
	}
	return context.WithCancel(ctx)
}
