// Package transport attaches the current bearer token to outgoing HTTP
// requests and turns server rejections of that token into
// common.ErrAuthentication.
package transport

import "sync/atomic"

// TokenHolder is the process-wide current token. Readers never block and
// never observe a partially updated value.
type TokenHolder struct {
	token atomic.Pointer[string]
}

func NewTokenHolder() *TokenHolder {
	return &TokenHolder{}
}

// Set replaces the token. An empty token clears it.
func (h *TokenHolder) Set(token string) {
	if token == "" {
		h.token.Store(nil)
		return
	}
	h.token.Store(&token)
}

func (h *TokenHolder) Clear() {
	h.token.Store(nil)
}

// Token returns the current token and whether one is set.
func (h *TokenHolder) Token() (string, bool) {
	p := h.token.Load()
	if p == nil {
		return "", false
	}
	return *p, true
}
