// Package common defines shared constants and sentinel errors used across
// client and server layers of authkeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Validation errors, resolved before any storage or network effect.
	ErrEmptyInput     = errors.New("empty input")
	ErrPasswordPolicy = errors.New("password policy violation")

	// Uniqueness errors, derived from store constraint violations.
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")

	// Auth errors. ErrInvalidCredentials never says which field was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthentication     = errors.New("authentication rejected")
	ErrInvalidToken       = errors.New("invalid token")

	// Infrastructure errors.
	ErrNetwork     = errors.New("network error")
	ErrPersistence = errors.New("persistence error")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal        = errors.New("internal error")
	ErrLoginSuperseded = errors.New("login superseded by logout")
)
