package transport

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

type ctxKey struct{}

// WithoutAuth marks ctx so requests made with it are sent without a bearer
// token, e.g. login and registration.
func WithoutAuth(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, true)
}

func skipAuth(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKey{}).(bool)
	return v
}

// AuthError is returned when the server answers 401 or 403 to a request
// that carried a token.
type AuthError struct {
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("server rejected session (status %d)", e.StatusCode)
}

func (e *AuthError) Is(target error) bool {
	return target == common.ErrAuthentication
}

// AuthTransport is an http.RoundTripper that adds
// "Authorization: Bearer <token>" from a TokenHolder.
type AuthTransport struct {
	Base   http.RoundTripper
	Holder *TokenHolder
}

func New(base http.RoundTripper, holder *TokenHolder) *AuthTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &AuthTransport{Base: base, Holder: holder}
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token, ok := t.Holder.Token()
	attached := ok && !skipAuth(req.Context())

	if attached {
		// RoundTrippers must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if attached && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		_ = resp.Body.Close()
		return nil, &AuthError{StatusCode: resp.StatusCode}
	}
	return resp, nil
}

// CloseIdleConnections lets http.Client.CloseIdleConnections reach Base.
func (t *AuthTransport) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	if c, ok := t.Base.(closeIdler); ok {
		c.CloseIdleConnections()
	}
}
