package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/api"
	"github.com/dmitrijs2005/authkeeper/internal/client/transport"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the server at baseURL. Requests go
// through rt, which is expected to add the bearer token.
func NewHTTPClient(baseURL string, rt http.RoundTripper, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: rt, Timeout: timeout},
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, common.ErrAuthentication) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %s: %w", common.ErrNetwork, method, path, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		return nil, mapError(resp)
	}
	return resp, nil
}

func call[T any](ctx context.Context, c *HTTPClient, method, path string, in any) (*T, error) {
	resp, err := c.do(ctx, method, path, in)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env api.Response[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %w", common.ErrNetwork, path, err)
	}
	return &env.Data, nil
}

func (c *HTTPClient) Register(ctx context.Context, req api.RegisterRequest) (*api.CredentialResponse, error) {
	return call[api.CredentialResponse](transport.WithoutAuth(ctx), c, http.MethodPost, "/user", req)
}

func (c *HTTPClient) Login(ctx context.Context, identifier, password string) (*api.LoginResponse, error) {
	req := api.LoginRequest{Username: identifier, Password: password}
	return call[api.LoginResponse](transport.WithoutAuth(ctx), c, http.MethodPost, "/user/login", req)
}

func (c *HTTPClient) Me(ctx context.Context) (*api.UserResponse, error) {
	return call[api.UserResponse](ctx, c, http.MethodGet, "/user/me", nil)
}

func (c *HTTPClient) UpdateAccount(ctx context.Context, req api.UpdateAccountRequest) (*api.CredentialResponse, error) {
	return call[api.CredentialResponse](ctx, c, http.MethodPatch, "/user", req)
}

func (c *HTTPClient) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := c.do(ctx, http.MethodPut, "/user/password", api.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	})
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, token string) (*api.CredentialResponse, error) {
	return call[api.CredentialResponse](transport.WithoutAuth(ctx), c, http.MethodPost, "/user/verify", api.VerifyEmailRequest{Token: token})
}

// PasswordPolicy fetches the password rules the server enforces.
func (c *HTTPClient) PasswordPolicy(ctx context.Context) (*api.PasswordPolicyResponse, error) {
	return call[api.PasswordPolicyResponse](transport.WithoutAuth(ctx), c, http.MethodGet, "/password-policy", nil)
}

// Ping checks that the server answers /healthz.
func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.do(transport.WithoutAuth(ctx), http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
