package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// ErrNotRemembered is returned by RefreshRememberMe when no complete
// remember-me record is stored.
var ErrNotRemembered = errors.New("no remember-me token stored")

// Store persists the session in a metadata.Store. Every operation is a
// single transaction, and operations are serialized against each other so a
// concurrent login and logout can never leave a half-written session.
type Store struct {
	meta           metadata.Store
	rememberWindow time.Duration
	now            func() time.Time

	mu sync.Mutex
}

func NewStore(meta metadata.Store, rememberWindow time.Duration) *Store {
	if rememberWindow <= 0 {
		rememberWindow = DefaultRememberWindow
	}
	return &Store{meta: meta, rememberWindow: rememberWindow, now: time.Now}
}

func persistence(op string, err error) error {
	return fmt.Errorf("session %s: %w: %w", op, common.ErrPersistence, err)
}

func setAll(ctx context.Context, r metadata.Repository, kv map[string][]byte) error {
	for k, v := range kv {
		if err := r.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}

func deleteAll(ctx context.Context, r metadata.Repository, keys []string) error {
	for _, k := range keys {
		if err := r.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// SaveSession records a successful login. With rememberMe the token is also
// kept as the remember-me token, valid for the remember window; without it
// any previous remember-me record is dropped.
func (s *Store) SaveSession(ctx context.Context, token string, rememberMe bool) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("session token: %w", common.ErrEmptyInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	err := s.meta.Update(ctx, func(r metadata.Repository) error {
		if err := setAll(ctx, r, map[string][]byte{
			KeyAuthToken:  []byte(token),
			KeyLastLogin:  encodeTime(now),
			KeyRememberMe: encodeBool(rememberMe),
		}); err != nil {
			return err
		}
		if !rememberMe {
			return deleteAll(ctx, r, []string{KeyRememberToken, KeyRememberExpiry})
		}
		return setAll(ctx, r, map[string][]byte{
			KeyRememberToken:  []byte(token),
			KeyRememberExpiry: encodeTime(now.Add(s.rememberWindow)),
		})
	})
	if err != nil {
		return persistence("save", err)
	}
	return nil
}

// ReadSession returns the persisted snapshot. A missing auth token yields
// the zero State regardless of what else is stored, and an incomplete
// remember-me record reads as RememberMe == false.
func (s *Store) ReadSession(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read(ctx)
	if err != nil {
		return State{}, persistence("read", err)
	}
	return state, nil
}

func (s *Store) read(ctx context.Context) (State, error) {
	var raw map[string][]byte
	err := s.meta.View(ctx, func(r metadata.Repository) error {
		var err error
		raw, err = r.List(ctx)
		return err
	})
	if err != nil {
		return State{}, err
	}

	state := State{AuthToken: string(raw[KeyAuthToken])}
	if !state.LoggedIn() {
		return State{}, nil
	}

	if state.LastLogin, err = decodeTime(raw[KeyLastLogin]); err != nil {
		return State{}, fmt.Errorf("%s: %w", KeyLastLogin, err)
	}
	if state.RememberMe, err = decodeBool(raw[KeyRememberMe]); err != nil {
		return State{}, fmt.Errorf("%s: %w", KeyRememberMe, err)
	}
	state.RememberToken = string(raw[KeyRememberToken])
	if state.RememberExpiry, err = decodeTime(raw[KeyRememberExpiry]); err != nil {
		return State{}, fmt.Errorf("%s: %w", KeyRememberExpiry, err)
	}

	if !state.CanRemember() {
		state.RememberMe = false
		state.RememberToken = ""
		state.RememberExpiry = time.Time{}
	}
	return state, nil
}

// RefreshRememberMe slides the remember-me expiry and the last login time
// forward to now, and makes the remember-me token the active auth token.
// It returns the token now in effect.
func (s *Store) RefreshRememberMe(ctx context.Context, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read(ctx)
	if err != nil {
		return "", persistence("refresh", err)
	}
	if !state.LoggedIn() || !state.CanRemember() {
		return "", ErrNotRemembered
	}

	err = s.meta.Update(ctx, func(r metadata.Repository) error {
		return setAll(ctx, r, map[string][]byte{
			KeyAuthToken:      []byte(state.RememberToken),
			KeyLastLogin:      encodeTime(now),
			KeyRememberExpiry: encodeTime(now.Add(s.rememberWindow)),
		})
	})
	if err != nil {
		return "", persistence("refresh", err)
	}
	return state.RememberToken, nil
}

// TouchLastLogin moves only the last login time.
func (s *Store) TouchLastLogin(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.meta.Update(ctx, func(r metadata.Repository) error {
		token, err := r.Get(ctx, KeyAuthToken)
		if err != nil {
			return err
		}
		if token == nil {
			return nil
		}
		return r.Set(ctx, KeyLastLogin, encodeTime(now))
	})
	if err != nil {
		return persistence("touch", err)
	}
	return nil
}

// ClearSession empties the metadata store, which holds nothing but the
// session.
func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.meta.Update(ctx, func(r metadata.Repository) error {
		return r.Clear(ctx)
	})
	if err != nil {
		return persistence("clear", err)
	}
	return nil
}

// ClearRememberMe removes only the remember-me keys.
func (s *Store) ClearRememberMe(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.meta.Update(ctx, func(r metadata.Repository) error {
		return deleteAll(ctx, r, rememberKeys)
	})
	if err != nil {
		return persistence("clear remember-me", err)
	}
	return nil
}
