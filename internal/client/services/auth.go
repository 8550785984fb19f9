// Package services contains application services for the authkeeper client.
// This file defines the authentication orchestrator: login, registration,
// logout and restoring a persisted session, keeping the session store and
// the transport's token holder in step.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/client/client"
	"github.com/dmitrijs2005/authkeeper/internal/client/session"
	"github.com/dmitrijs2005/authkeeper/internal/client/transport"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/password"
)

// AuthService defines authentication operations for the CLI.
//
// Errors are sentinels from package common, plus *password.PolicyError for
// password rule violations. Any call that reaches the server with a token
// the server rejects clears the local session and returns an error
// matching common.ErrAuthentication.
type AuthService interface {
	Login(ctx context.Context, identifier, password string, rememberMe bool) (*api.UserResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.CredentialResponse, error)
	Logout(ctx context.Context) error
	Restore(ctx context.Context) (session.Decision, error)
	CurrentUser(ctx context.Context) (*api.UserResponse, error)
	UpdateAccount(ctx context.Context, email, username *string) (*api.CredentialResponse, error)
	ChangePassword(ctx context.Context, current, next string) error
	VerifyEmail(ctx context.Context, token string) (*api.CredentialResponse, error)
	SignedIn() bool
	Ping(ctx context.Context) error
	Watch(ctx context.Context, interval time.Duration, onChange func(session.Decision))
	Close(ctx context.Context) error
}

type authService struct {
	client client.Client
	store  *session.Store
	holder *transport.TokenHolder
	policy session.Policy
	logger logging.Logger
	now    func() time.Time

	// passwords caches the server's password rules once fetched.
	passwordsMu sync.Mutex
	passwords   *password.Policy

	// mu orders session mutations. generation is bumped by every logout so
	// a login whose round trip straddles a logout can tell it lost.
	mu         sync.Mutex
	generation uint64
}

// NewAuthService wires the orchestrator. holder must be the one the
// client's transport reads. Password rules are taken from the server.
func NewAuthService(c client.Client, store *session.Store, holder *transport.TokenHolder,
	policy session.Policy, logger logging.Logger) AuthService {
	return &authService{
		client: c,
		store:  store,
		holder: holder,
		policy: policy,
		logger: logger.With("module", "auth_service"),
		now:    time.Now,
	}
}

// passwordPolicy returns the server's password rules, fetching them on
// first use. A failed fetch is not cached.
func (a *authService) passwordPolicy(ctx context.Context) (password.Policy, error) {
	a.passwordsMu.Lock()
	defer a.passwordsMu.Unlock()

	if a.passwords != nil {
		return *a.passwords, nil
	}
	resp, err := a.client.PasswordPolicy(ctx)
	if err != nil {
		return password.Policy{}, err
	}
	p := password.Policy{MinLength: resp.MinLength, MinEntropyBits: resp.MinEntropyBits}
	a.passwords = &p
	return p, nil
}

func (a *authService) validatePassword(ctx context.Context, pw string) error {
	p, err := a.passwordPolicy(ctx)
	if err != nil {
		return err
	}
	return p.Validate(pw)
}

func (a *authService) currentGeneration() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}

// Login authenticates against the server. The session is written and the
// token published only after the round trip succeeds; nothing changes
// locally on failure.
func (a *authService) Login(ctx context.Context, identifier, pass string, rememberMe bool) (*api.UserResponse, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || strings.TrimSpace(pass) == "" {
		return nil, fmt.Errorf("login: %w", common.ErrEmptyInput)
	}

	gen := a.currentGeneration()

	res, err := a.client.Login(ctx, identifier, pass)
	if err != nil {
		a.logger.Info(ctx, "login failed", "identifier", identifier, "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrNetwork, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.generation != gen {
		return nil, common.ErrLoginSuperseded
	}
	if err := a.store.SaveSession(ctx, res.AccessToken, rememberMe); err != nil {
		return nil, err
	}
	a.holder.Set(res.AccessToken)

	a.logger.Info(ctx, "logged in", "identifier", identifier, "remember_me", rememberMe)
	return &res.User, nil
}

// Register validates locally with the server's password rules, then creates
// the account on the server. It does not log in.
func (a *authService) Register(ctx context.Context, req api.RegisterRequest) (*api.CredentialResponse, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)

	switch {
	case req.Email == "":
		return nil, fmt.Errorf("email: %w", common.ErrEmptyInput)
	case req.Username == "":
		return nil, fmt.Errorf("username: %w", common.ErrEmptyInput)
	case req.Name == "":
		return nil, fmt.Errorf("name: %w", common.ErrEmptyInput)
	case strings.TrimSpace(req.Password) == "":
		return nil, fmt.Errorf("password: %w", common.ErrEmptyInput)
	}
	if err := a.validatePassword(ctx, req.Password); err != nil {
		return nil, err
	}

	cred, err := a.client.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "registered", "username", cred.Username)
	return cred, nil
}

// Logout always clears the token holder, even if ctx is cancelled or the
// store fails; the store error is still returned. No server call is made.
func (a *authService) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.generation++
	a.holder.Clear()

	if err := a.store.ClearSession(context.WithoutCancel(ctx)); err != nil {
		a.logger.Error(ctx, "clear session failed", "error", err)
		return err
	}
	a.logger.Info(ctx, "logged out")
	return nil
}

// Restore evaluates the persisted session and applies the decision:
// an active session is touched, a restorable one is refreshed from its
// remember-me token, an expired one is cleared. After ActiveSession or
// RememberMeRestorable the token holder carries the session token.
func (a *authService) Restore(ctx context.Context) (session.Decision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	state, err := a.store.ReadSession(ctx)
	if err != nil {
		return session.LoggedOut, err
	}

	now := a.now()
	d := a.policy.Decide(state, now)
	a.logger.Debug(ctx, "session decision", "decision", d.String())

	switch d {
	case session.ActiveSession:
		if err := a.store.TouchLastLogin(ctx, now); err != nil {
			return d, err
		}
		a.holder.Set(state.AuthToken)
	case session.RememberMeRestorable:
		token, err := a.store.RefreshRememberMe(ctx, now)
		if err != nil {
			return d, err
		}
		a.holder.Set(token)
		a.logger.Info(ctx, "session restored from remember-me")
	case session.ExpiredSession:
		a.holder.Clear()
		if err := a.store.ClearSession(ctx); err != nil {
			return d, err
		}
		a.logger.Info(ctx, "session expired")
	default:
		a.holder.Clear()
	}
	return d, nil
}

// expire drops the local session after the server rejected token. If the
// session has moved on to another token since (logout, a newer login, a
// remember-me restore) the current session is left alone.
func (a *authService) expire(ctx context.Context, token string, cause error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if current, ok := a.holder.Token(); !ok || current != token {
		return cause
	}
	a.generation++
	a.holder.Clear()
	if err := a.store.ClearSession(context.WithoutCancel(ctx)); err != nil {
		a.logger.Error(ctx, "clear rejected session failed", "error", err)
		return errors.Join(cause, err)
	}
	a.logger.Warn(ctx, "server rejected session, logged out")
	return cause
}

func (a *authService) authenticated(ctx context.Context, fn func(ctx context.Context) error) error {
	token, ok := a.holder.Token()
	if !ok {
		return common.ErrAuthentication
	}
	err := fn(ctx)
	if errors.Is(err, common.ErrAuthentication) {
		return a.expire(ctx, token, err)
	}
	return err
}

func (a *authService) CurrentUser(ctx context.Context) (*api.UserResponse, error) {
	var user *api.UserResponse
	err := a.authenticated(ctx, func(ctx context.Context) error {
		var err error
		user, err = a.client.Me(ctx)
		return err
	})
	return user, err
}

func (a *authService) UpdateAccount(ctx context.Context, email, username *string) (*api.CredentialResponse, error) {
	if email == nil && username == nil {
		return nil, fmt.Errorf("update account: %w", common.ErrEmptyInput)
	}
	for _, v := range []*string{email, username} {
		if v != nil && strings.TrimSpace(*v) == "" {
			return nil, fmt.Errorf("update account: %w", common.ErrEmptyInput)
		}
	}

	var cred *api.CredentialResponse
	err := a.authenticated(ctx, func(ctx context.Context) error {
		var err error
		cred, err = a.client.UpdateAccount(ctx, api.UpdateAccountRequest{Email: email, Username: username})
		return err
	})
	return cred, err
}

// ChangePassword checks next against the server's password rules, then
// calls the server. A wrong current password comes back as
// ErrInvalidCredentials and leaves the session alone.
func (a *authService) ChangePassword(ctx context.Context, current, next string) error {
	if strings.TrimSpace(current) == "" || strings.TrimSpace(next) == "" {
		return fmt.Errorf("change password: %w", common.ErrEmptyInput)
	}
	if err := a.validatePassword(ctx, next); err != nil {
		return err
	}
	return a.authenticated(ctx, func(ctx context.Context) error {
		return a.client.ChangePassword(ctx, current, next)
	})
}

func (a *authService) VerifyEmail(ctx context.Context, token string) (*api.CredentialResponse, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("verification token: %w", common.ErrEmptyInput)
	}
	return a.client.VerifyEmail(ctx, strings.TrimSpace(token))
}

func (a *authService) SignedIn() bool {
	_, ok := a.holder.Token()
	return ok
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
