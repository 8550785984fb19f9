package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/session"
)

// Watch re-evaluates the persisted session every interval until ctx is
// done, calling onChange whenever the decision differs from the previous
// one. The first evaluation happens after one interval.
func (a *authService) Watch(ctx context.Context, interval time.Duration, onChange func(session.Decision)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := session.LoggedOut
	if a.SignedIn() {
		last = session.ActiveSession
	}

	for {
		select {
		case <-ticker.C:
			d, err := a.Restore(ctx)
			if err != nil {
				a.logger.Warn(ctx, "session check failed", "error", err)
				continue
			}
			if d == session.RememberMeRestorable {
				d = session.ActiveSession
			}
			if d != last {
				last = d
				if onChange != nil {
					onChange(d)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}
