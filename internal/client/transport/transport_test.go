package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func echoAuth(status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Seen-Auth", r.Header.Get(common.AuthorizationHeaderName))
		w.WriteHeader(status)
	}))
}

func newClient(h *TokenHolder) *http.Client {
	return &http.Client{Transport: New(nil, h)}
}

func get(t *testing.T, c *http.Client, ctx context.Context, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	return c.Do(req)
}

func TestTokenHolder(t *testing.T) {
	h := NewTokenHolder()

	_, ok := h.Token()
	assert.False(t, ok)

	h.Set("abc")
	tok, ok := h.Token()
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	h.Set("")
	_, ok = h.Token()
	assert.False(t, ok)

	h.Set("x")
	h.Clear()
	_, ok = h.Token()
	assert.False(t, ok)
}

func TestRoundTrip_AttachesBearer(t *testing.T) {
	srv := echoAuth(http.StatusOK)
	defer srv.Close()

	h := NewTokenHolder()
	h.Set("tok")
	c := newClient(h)
	defer c.CloseIdleConnections()

	resp, err := get(t, c, context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "Bearer tok", resp.Header.Get("X-Seen-Auth"))
}

func TestRoundTrip_NoTokenSendsUnauthenticated(t *testing.T) {
	srv := echoAuth(http.StatusOK)
	defer srv.Close()

	c := newClient(NewTokenHolder())
	defer c.CloseIdleConnections()

	resp, err := get(t, c, context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Empty(t, resp.Header.Get("X-Seen-Auth"))
}

func TestRoundTrip_WithoutAuthSkipsToken(t *testing.T) {
	srv := echoAuth(http.StatusUnauthorized)
	defer srv.Close()

	h := NewTokenHolder()
	h.Set("tok")
	c := newClient(h)
	defer c.CloseIdleConnections()

	resp, err := get(t, c, WithoutAuth(context.Background()), srv.URL)
	require.NoError(t, err, "401 without an attached token is the caller's business")
	defer resp.Body.Close()
	assert.Empty(t, resp.Header.Get("X-Seen-Auth"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoundTrip_RejectedTokenIsAuthenticationError(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		srv := echoAuth(status)

		h := NewTokenHolder()
		h.Set("revoked")
		c := newClient(h)

		_, err := get(t, c, context.Background(), srv.URL)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrAuthentication), "status %d", status)

		var ae *AuthError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, status, ae.StatusCode)

		c.CloseIdleConnections()
		srv.Close()
	}
}

func TestRoundTrip_DoesNotMutateCallerRequest(t *testing.T) {
	srv := echoAuth(http.StatusOK)
	defer srv.Close()

	h := NewTokenHolder()
	h.Set("tok")
	c := newClient(h)
	defer c.CloseIdleConnections()

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Empty(t, req.Header.Get(common.AuthorizationHeaderName))
}

func TestTokenHolder_ConcurrentAccess(t *testing.T) {
	h := NewTokenHolder()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Set("a-long-token-value")
		}()
		go func() {
			defer wg.Done()
			if tok, ok := h.Token(); ok {
				assert.Equal(t, "a-long-token-value", tok)
			}
		}()
	}
	wg.Wait()
}
