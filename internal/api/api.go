// Package api holds the JSON payloads exchanged between the authkeeper
// server and its clients.
package api

import "time"

// Response is the envelope wrapping every JSON body.
type Response[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrorData is the data field of an error envelope.
type ErrorData struct {
	Code       string   `json:"code"`
	Violations []string `json:"violations,omitempty"`
}

// Machine-readable error codes.
const (
	CodeEmptyInput         = "empty_input"
	CodePasswordPolicy     = "password_policy"
	CodeDuplicateEmail     = "duplicate_email"
	CodeDuplicateUsername  = "duplicate_username"
	CodeInvalidCredentials = "invalid_credentials"
	CodeUnauthenticated    = "unauthenticated"
	CodeInvalidToken       = "invalid_token"
	CodeBadRequest         = "bad_request"
	CodeNotFound           = "not_found"
	CodeInternal           = "internal"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Gender    string `json:"gender,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
}

// LoginRequest carries the identifier in Username; an email address is
// accepted there as well.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

// CredentialResponse is the externally visible credential; it never carries
// the password hash.
type CredentialResponse struct {
	ID         int64      `json:"id"`
	UserID     string     `json:"userId"`
	Email      string     `json:"email"`
	Username   string     `json:"username"`
	IsVerified bool       `json:"isVerified"`
	LastLogin  *time.Time `json:"lastLogin,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

type UserResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Address    string              `json:"address,omitempty"`
	Phone      string              `json:"phone,omitempty"`
	Gender     string              `json:"gender,omitempty"`
	BirthDate  string              `json:"birthDate,omitempty"`
	Credential *CredentialResponse `json:"credential,omitempty"`
}

type UpdateAccountRequest struct {
	Email    *string `json:"email,omitempty"`
	Username *string `json:"username,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PasswordPolicyResponse is the rule set the server enforces. Clients
// validate against it before sending a new password.
type PasswordPolicyResponse struct {
	MinLength      int     `json:"minLength"`
	MaxBytes       int     `json:"maxBytes"`
	MinEntropyBits float64 `json:"minEntropyBits,omitempty"`
}

type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// DateLayout is the wire format of BirthDate.
const DateLayout = "2006-01-02"
