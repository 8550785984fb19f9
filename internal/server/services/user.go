// Package services contains server-side business logic. UserService
// registers users, authenticates them and manages their credential.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/password"
	"github.com/dmitrijs2005/authkeeper/internal/server/auth"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/repomanager"
	"github.com/samber/oops"
)

// RegisterInput is everything needed to create a user and its credential.
type RegisterInput struct {
	Profile  models.User
	Email    string
	Username string
	Password string
}

// LoginResult is returned on a successful login. Credential is the public
// view.
type LoginResult struct {
	AccessToken string
	User        *models.User
	Credential  *models.Credential
}

type UserService struct {
	db              *sql.DB
	repomanager     repomanager.RepositoryManager
	hasher          password.Hasher
	policy          password.Policy
	tokens          *auth.TokenIssuer
	notifier        VerificationNotifier
	logger          logging.Logger
	verificationTTL time.Duration
	now             func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, notifier VerificationNotifier, logger logging.Logger) *UserService {
	return &UserService{
		db:              db,
		repomanager:     m,
		hasher:          password.NewHasher(cfg.HashAlgorithm, cfg.BcryptCost),
		policy:          password.Policy{MinLength: cfg.PasswordMinLength, MinEntropyBits: cfg.PasswordMinEntropy},
		tokens:          auth.NewTokenIssuer(cfg.SecretKey),
		notifier:        notifier,
		logger:          logger,
		verificationTTL: cfg.VerificationTokenTTL,
		now:             time.Now,
	}
}

// PasswordPolicy returns the rule set passwords are validated against.
func (s *UserService) PasswordPolicy() password.Policy {
	return s.policy
}

func emptyInput(field string) error {
	return oops.Code("EMPTY_INPUT").With("field", field).Wrapf(common.ErrEmptyInput, "%s is required", field)
}

func invalidCredentials() error {
	return oops.Code("INVALID_CREDENTIALS").Wrap(common.ErrInvalidCredentials)
}

// Register validates the password, then creates the user row and the
// credential in one transaction. Uniqueness is decided by the database at
// insert time.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.Credential, error) {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)
	switch {
	case email == "":
		return nil, emptyInput("email")
	case username == "":
		return nil, emptyInput("username")
	case strings.TrimSpace(in.Password) == "":
		return nil, emptyInput("password")
	}

	if err := s.policy.Validate(in.Password); err != nil {
		return nil, oops.Code("PASSWORD_POLICY").With("username", username).Wrap(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, oops.Code("TOKEN_FAILED").Wrap(err)
	}

	var cred *models.Credential
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		profile := in.Profile
		user, err := s.repomanager.Users(tx).Create(ctx, &profile)
		if err != nil {
			return err
		}

		creds := s.repomanager.Credentials(tx)
		cred, err = creds.Create(ctx, &models.Credential{
			UserID:       user.ID,
			Email:        email,
			Username:     username,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}

		return creds.SetVerificationToken(ctx, cred.ID, token, s.now().Add(s.verificationTTL))
	})
	if err != nil {
		s.logger.Warn(ctx, "registration failed", "username", username, "error", err)
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "username", username, "user_id", cred.UserID)

	if s.notifier != nil {
		if err := s.notifier.SendVerification(ctx, cred.Email, cred.Username, token); err != nil {
			s.logger.Error(ctx, "verification delivery failed", "username", username, "error", err)
		}
	}

	public := cred.Public()
	return &public, nil
}

// dummy returns a hash that unknown identifiers are verified against, so a
// missing user costs as much time as a wrong password.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		seed, err := common.MakeRandHexString(16)
		if err != nil {
			seed = "dummy-password"
		}
		s.dummyHash, _ = s.hasher.Hash(seed)
	})
	return s.dummyHash
}

// Login verifies identifier (username or email) and password. Unknown
// identifiers and wrong passwords fail identically with
// common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, identifier, pass string) (*LoginResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || strings.TrimSpace(pass) == "" {
		return nil, invalidCredentials()
	}

	cred, err := s.repomanager.Credentials(s.db).GetForAuth(ctx, identifier)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			if dummy := s.dummy(); dummy != "" {
				_, _ = s.hasher.Verify(pass, dummy)
			}
			return nil, invalidCredentials()
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(pass, cred.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored hash unusable", "credential_id", cred.ID, "error", err)
		return nil, invalidCredentials()
	}
	if !ok {
		return nil, invalidCredentials()
	}

	now := s.now()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		creds := s.repomanager.Credentials(tx)
		if err := creds.UpdateLastLogin(ctx, cred.ID, now); err != nil {
			return err
		}
		if !s.hasher.NeedsUpgrade(cred.PasswordHash) {
			return nil
		}
		upgraded, err := s.hasher.Hash(pass)
		if err != nil {
			return err
		}
		return creds.UpdatePasswordHash(ctx, cred.ID, upgraded, now)
	})
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, oops.Code("TOKEN_FAILED").Wrap(err)
	}

	cred.LastLogin = &now
	public := cred.Public()
	return &LoginResult{AccessToken: token, User: user, Credential: &public}, nil
}

// Authenticate resolves a bearer token to the user id it was issued for.
func (s *UserService) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.UserID(token)
	if err != nil {
		return "", oops.Code("UNAUTHENTICATED").Wrap(err)
	}
	return userID, nil
}

// Me returns the profile and public credential of userID. A token whose
// user no longer exists is reported as common.ErrInvalidToken.
func (s *UserService) Me(ctx context.Context, userID string) (*models.User, *models.Credential, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil, oops.Code("UNAUTHENTICATED").Wrap(common.ErrInvalidToken)
		}
		return nil, nil, err
	}
	cred, err := s.repomanager.Credentials(s.db).GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, cred, nil
}

// UpdateAccount changes the email and/or username. Nil fields keep their
// current value.
func (s *UserService) UpdateAccount(ctx context.Context, userID string, email, username *string) (*models.Credential, error) {
	var cred *models.Credential
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		creds := s.repomanager.Credentials(tx)
		current, err := creds.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}

		newEmail, newUsername := current.Email, current.Username
		if email != nil {
			if newEmail = strings.TrimSpace(*email); newEmail == "" {
				return emptyInput("email")
			}
		}
		if username != nil {
			if newUsername = strings.TrimSpace(*username); newUsername == "" {
				return emptyInput("username")
			}
		}

		cred, err = creds.UpdateEmailUsername(ctx, current.ID, newEmail, newUsername, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return cred, nil
}

// ChangePassword replaces the password after checking the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if strings.TrimSpace(current) == "" {
		return emptyInput("currentPassword")
	}
	if strings.TrimSpace(next) == "" {
		return emptyInput("newPassword")
	}
	if err := s.policy.Validate(next); err != nil {
		return oops.Code("PASSWORD_POLICY").Wrap(err)
	}

	creds := s.repomanager.Credentials(s.db)
	cred, err := creds.GetForAuthByUserID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := s.hasher.Verify(current, cred.PasswordHash)
	if err != nil || !ok {
		return invalidCredentials()
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := creds.UpdatePasswordHash(ctx, cred.ID, hash, s.now()); err != nil {
		return err
	}

	s.logger.Info(ctx, "password changed", "user_id", userID)
	return nil
}

// VerifyEmail consumes a verification token.
func (s *UserService) VerifyEmail(ctx context.Context, token string) (*models.Credential, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, oops.Code("INVALID_TOKEN").Wrap(common.ErrInvalidToken)
	}
	cred, err := s.repomanager.Credentials(s.db).VerifyByToken(ctx, token, s.now())
	if err != nil {
		return nil, err
	}
	return cred, nil
}
