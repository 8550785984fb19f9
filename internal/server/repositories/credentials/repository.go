// Package credentials persists the one-per-user credential record.
//
// Uniqueness of email and username is enforced by the database; a
// constraint violation at insert or update time is reported as
// common.ErrDuplicateEmail or common.ErrDuplicateUsername, so concurrent
// registrations cannot both succeed.
package credentials

import (
	"context"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Credential) (*models.Credential, error)

	// GetForAuth looks a credential up by username or email and includes
	// the password hash. Only the auth service may call it.
	GetForAuth(ctx context.Context, identifier string) (*models.Credential, error)

	// GetByUserID returns the public view, without the password hash.
	GetByUserID(ctx context.Context, userID string) (*models.Credential, error)

	// GetForAuthByUserID is GetForAuth keyed by owner.
	GetForAuthByUserID(ctx context.Context, userID string) (*models.Credential, error)

	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdateEmailUsername(ctx context.Context, id int64, email, username string, at time.Time) (*models.Credential, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string, at time.Time) error
	SetVerificationToken(ctx context.Context, id int64, token string, expiresAt time.Time) error

	// VerifyByToken marks the credential owning an unexpired token verified
	// and clears the token.
	VerifyByToken(ctx context.Context, token string, now time.Time) (*models.Credential, error)
}
