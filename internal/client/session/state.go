// Package session persists the client's login session and decides, on
// demand, whether that session is still usable.
package session

import (
	"strconv"
	"time"
)

// Keys of the persisted session in the metadata store.
const (
	KeyAuthToken      = "auth_token"
	KeyLastLogin      = "last_login_time"
	KeyRememberMe     = "remember_me"
	KeyRememberToken  = "remember_me_token"
	KeyRememberExpiry = "remember_me_expiry"
)

var rememberKeys = []string{KeyRememberMe, KeyRememberToken, KeyRememberExpiry}

// State is a snapshot of the persisted session. Timestamps have second
// precision. The zero value means "never logged in".
type State struct {
	AuthToken      string
	LastLogin      time.Time
	RememberMe     bool
	RememberToken  string
	RememberExpiry time.Time
}

// LoggedIn reports whether an auth token is present. When it is not, every
// other field is stale and must be ignored.
func (s State) LoggedIn() bool {
	return s.AuthToken != ""
}

// CanRemember reports whether the remember-me fields are complete.
func (s State) CanRemember() bool {
	return s.RememberMe && s.RememberToken != "" && !s.RememberExpiry.IsZero()
}

func encodeTime(t time.Time) []byte {
	return []byte(strconv.FormatInt(t.Unix(), 10))
}

func decodeTime(b []byte) (time.Time, error) {
	if len(b) == 0 {
		return time.Time{}, nil
	}
	sec, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(sec, 0), nil
}

func encodeBool(v bool) []byte {
	return []byte(strconv.FormatBool(v))
}

func decodeBool(b []byte) (bool, error) {
	if len(b) == 0 {
		return false, nil
	}
	return strconv.ParseBool(string(b))
}
