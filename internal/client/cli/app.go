package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/casauth/internal/client/client"
	"github.com/dmitrijs2005/casauth/internal/client/config"
)

// CredentialClient is the server surface the CLI needs.
type CredentialClient interface {
	Login(ctx context.Context, c client.Credentials) (*client.Session, error)
	ResolveProfile(ctx context.Context, accessToken string) (*client.Profile, error)
	Logout(ctx context.Context, accessToken string) error
	Close() error
}

type App struct {
	config  *config.Config
	api     CredentialClient
	reader  *bufio.Reader
	out     io.Writer
	session *client.Session
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.Service)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, api CredentialClient, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: api, reader: bufio.NewReader(in), out: out}
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.session != nil
}

func (a *App) getStatus() string {
	if a.session == nil {
		return ""
	}
	return "(" + a.session.ID + ")"
}

// requestContext bounds a single call by the configured timeout.
func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}
