package models

import "time"

// Credential binds a username and email to a password hash. There is
// exactly one per User.
type Credential struct {
	ID                int64
	UserID            string
	Email             string
	Username          string
	PasswordHash      string
	IsVerified        bool
	VerificationToken *string
	TokenExpiresAt    *time.Time
	LastLogin         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Public returns a copy safe to hand outside the service layer: the
// password hash and verification token are cleared.
func (c Credential) Public() Credential {
	c.PasswordHash = ""
	c.VerificationToken = nil
	c.TokenExpiresAt = nil
	return c
}
