package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/config"
	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authkeeper/internal/client/services"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/dmitrijs2005/authkeeper/internal/client/transport"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

type App struct {
	config      *config.Config
	authService services.AuthService
	logger      logging.Logger
	meta        metadata.Store
	reader      *bufio.Reader
	out         io.Writer
}

// NewApp opens the local session store and wires the HTTP client, the
// token-attaching transport and the auth orchestrator.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, c.LogLevel, os.Stderr)

	meta, err := metadata.Open(ctx, c.StoreBackend, c.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	holder := transport.NewTokenHolder()
	apiClient := client.NewHTTPClient(c.ServerURL, transport.New(nil, holder), c.RequestTimeout)

	as := services.NewAuthService(
		apiClient,
		session.NewStore(meta, c.RememberWindow),
		holder,
		session.Policy{SessionWindow: c.SessionWindow},
		logger,
	)

	return &App{
		config:      c,
		authService: as,
		logger:      logger,
		meta:        meta,
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.authService.SignedIn()
}

func (a *App) status() string {
	if a.isLoggedIn() {
		return "signed in"
	}
	return "signed out"
}

// restore applies the persisted session, if any, and reports the outcome.
func (a *App) restore(ctx context.Context) {
	d, err := a.authService.Restore(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Could not read saved session:", describe(err))
		return
	}
	switch d {
	case session.ActiveSession:
		fmt.Fprintln(a.out, "Welcome back, session resumed.")
	case session.RememberMeRestorable:
		fmt.Fprintln(a.out, "Welcome back, signed in from remembered session.")
	case session.ExpiredSession:
		fmt.Fprintln(a.out, "Your session has expired, please log in.")
	}
}

func (a *App) onSessionChange(d session.Decision) {
	if d == session.ExpiredSession || d == session.LoggedOut {
		fmt.Fprintln(a.out, "\nSession ended, please log in again.")
	}
}

// Run restores the session, starts the session watcher and runs the REPL
// until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		_ = a.authService.Close(ctx)
		_ = a.meta.Close()
	}()

	fmt.Fprintln(a.out, "authkeeper CLI (type 'help' for commands)")
	a.restore(ctx)

	watchCtx, cancel := context.WithCancel(ctx)
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		a.authService.Watch(watchCtx, a.config.WatchInterval, a.onSessionChange)
	}()

	runREPL(ctx, a, a.status, bufio.NewScanner(a.reader))

	cancel()
	<-watchDone
}
