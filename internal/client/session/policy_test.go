package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	p := DefaultPolicy()

	tests := []struct {
		name  string
		state State
		want  Decision
	}{
		{
			name:  "no token",
			state: State{LastLogin: now, RememberMe: true, RememberToken: "r", RememberExpiry: now.Add(time.Hour)},
			want:  LoggedOut,
		},
		{
			name:  "one hour ago is active",
			state: State{AuthToken: "t", LastLogin: now.Add(-time.Hour)},
			want:  ActiveSession,
		},
		{
			name:  "exactly at window edge is active",
			state: State{AuthToken: "t", LastLogin: now.Add(-2 * time.Hour)},
			want:  ActiveSession,
		},
		{
			name:  "three hours ago without remember-me is expired",
			state: State{AuthToken: "t", LastLogin: now.Add(-3 * time.Hour)},
			want:  ExpiredSession,
		},
		{
			name: "three hours ago with live remember-me is restorable",
			state: State{AuthToken: "t", LastLogin: now.Add(-3 * time.Hour),
				RememberMe: true, RememberToken: "t", RememberExpiry: now.Add(24 * time.Hour)},
			want: RememberMeRestorable,
		},
		{
			name: "remember-me expiring right now is still restorable",
			state: State{AuthToken: "t", LastLogin: now.Add(-3 * time.Hour),
				RememberMe: true, RememberToken: "t", RememberExpiry: now},
			want: RememberMeRestorable,
		},
		{
			name: "remember-me past expiry is expired",
			state: State{AuthToken: "t", LastLogin: now.Add(-3 * time.Hour),
				RememberMe: true, RememberToken: "t", RememberExpiry: now.Add(-time.Second)},
			want: ExpiredSession,
		},
		{
			name: "remember-me flag without token is expired",
			state: State{AuthToken: "t", LastLogin: now.Add(-3 * time.Hour),
				RememberMe: true, RememberExpiry: now.Add(time.Hour)},
			want: ExpiredSession,
		},
		{
			name:  "missing last login is not active",
			state: State{AuthToken: "t"},
			want:  ExpiredSession,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Decide(tt.state, now))
		})
	}
}

func TestDecide_CustomWindow(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	p := Policy{SessionWindow: 10 * time.Minute}

	s := State{AuthToken: "t", LastLogin: now.Add(-11 * time.Minute)}
	assert.Equal(t, ExpiredSession, p.Decide(s, now))
}

func TestDecide_SubSecondNowAtEdges(t *testing.T) {
	p := DefaultPolicy()
	last := time.Unix(1_000_000, 0)

	active := State{AuthToken: "t", LastLogin: last}
	assert.Equal(t, ActiveSession, p.Decide(active, time.Unix(1_000_000+7200, 400_000_000)))
	assert.Equal(t, ExpiredSession, p.Decide(active, time.Unix(1_000_000+7201, 0)))

	expiry := time.Unix(2_000_000, 0)
	remembered := State{AuthToken: "t", LastLogin: last, RememberMe: true, RememberToken: "r", RememberExpiry: expiry}
	assert.Equal(t, RememberMeRestorable, p.Decide(remembered, time.Unix(2_000_000, 400_000_000)))
	assert.Equal(t, ExpiredSession, p.Decide(remembered, time.Unix(2_000_001, 0)))
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "active", ActiveSession.String())
	assert.Equal(t, "logged_out", LoggedOut.String())
	assert.Equal(t, "unknown", Decision(42).String())
}
