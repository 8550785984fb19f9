package client

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/api"
)

type Client interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.CredentialResponse, error)
	Login(ctx context.Context, identifier, password string) (*api.LoginResponse, error)
	Me(ctx context.Context) (*api.UserResponse, error)
	UpdateAccount(ctx context.Context, req api.UpdateAccountRequest) (*api.CredentialResponse, error)
	ChangePassword(ctx context.Context, current, next string) error
	VerifyEmail(ctx context.Context, token string) (*api.CredentialResponse, error)
	PasswordPolicy(ctx context.Context) (*api.PasswordPolicyResponse, error)
	Ping(ctx context.Context) error
	Close() error
}
