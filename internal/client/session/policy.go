package session

import "time"

// Decision is the outcome of evaluating a State at a point in time.
type Decision int

const (
	LoggedOut Decision = iota
	ActiveSession
	ExpiredSession
	RememberMeRestorable
)

func (d Decision) String() string {
	switch d {
	case LoggedOut:
		return "logged_out"
	case ActiveSession:
		return "active"
	case ExpiredSession:
		return "expired"
	case RememberMeRestorable:
		return "remember_me_restorable"
	default:
		return "unknown"
	}
}

const (
	DefaultSessionWindow  = 2 * time.Hour
	DefaultRememberWindow = 7 * 24 * time.Hour
)

// Policy decides what a persisted session is worth. It performs no I/O.
type Policy struct {
	// SessionWindow is the sliding window after the last login during
	// which the auth token is used as-is.
	SessionWindow time.Duration
}

func DefaultPolicy() Policy {
	return Policy{SessionWindow: DefaultSessionWindow}
}

// Decide evaluates s at now. Times are compared in whole epoch seconds,
// the precision they are persisted with.
//
//   - no auth token: LoggedOut
//   - last login within SessionWindow (inclusive): ActiveSession
//   - remember-me complete and now not after its expiry: RememberMeRestorable
//   - otherwise: ExpiredSession
func (p Policy) Decide(s State, now time.Time) Decision {
	if !s.LoggedIn() {
		return LoggedOut
	}
	nowSec := now.Unix()
	if !s.LastLogin.IsZero() && nowSec-s.LastLogin.Unix() <= int64(p.SessionWindow/time.Second) {
		return ActiveSession
	}
	if s.CanRemember() && nowSec <= s.RememberExpiry.Unix() {
		return RememberMeRestorable
	}
	return ExpiredSession
}
