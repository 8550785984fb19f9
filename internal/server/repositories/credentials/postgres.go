package credentials

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/samber/oops"
)

// Constraint names from the credentials table migration.
const (
	ConstraintEmailUnique    = "credentials_email_unique"
	ConstraintUsernameUnique = "credentials_username_unique"
)

const publicColumns = `id, user_id, email, username, is_verified, last_login, created_at, updated_at`

const authColumns = `id, user_id, email, username, password_hash, is_verified,
		        verification_token, token_expires_at, last_login, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func dbError(op string, err error) error {
	if constraint, ok := dbx.UniqueViolation(err); ok {
		switch constraint {
		case ConstraintEmailUnique:
			return oops.Code("DUPLICATE_EMAIL").With("op", op).Wrap(common.ErrDuplicateEmail)
		case ConstraintUsernameUnique:
			return oops.Code("DUPLICATE_USERNAME").With("op", op).Wrap(common.ErrDuplicateUsername)
		}
	}
	return oops.Code("DB_ERROR").With("op", op).Wrap(dbx.Persistence(err))
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	query :=
		`INSERT INTO credentials (user_id, email, username, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, is_verified, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, c.UserID, c.Email, c.Username, c.PasswordHash).
		Scan(&c.ID, &c.IsVerified, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, dbError("credentials.create", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPublic(row rowScanner) (*models.Credential, error) {
	c := &models.Credential{}
	var lastLogin sql.NullTime
	if err := row.Scan(&c.ID, &c.UserID, &c.Email, &c.Username, &c.IsVerified,
		&lastLogin, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		c.LastLogin = &lastLogin.Time
	}
	return c, nil
}

func scanAuth(row rowScanner) (*models.Credential, error) {
	c := &models.Credential{}
	var (
		token     sql.NullString
		expiresAt sql.NullTime
		lastLogin sql.NullTime
	)
	if err := row.Scan(&c.ID, &c.UserID, &c.Email, &c.Username, &c.PasswordHash, &c.IsVerified,
		&token, &expiresAt, &lastLogin, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if token.Valid {
		c.VerificationToken = &token.String
	}
	if expiresAt.Valid {
		c.TokenExpiresAt = &expiresAt.Time
	}
	if lastLogin.Valid {
		c.LastLogin = &lastLogin.Time
	}
	return c, nil
}

func notFoundOr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	return dbError(op, err)
}

func (r *PostgresRepository) GetForAuth(ctx context.Context, identifier string) (*models.Credential, error) {
	query := `SELECT ` + authColumns + `
		 FROM credentials
		 WHERE username = $1 OR email = $1
		 ORDER BY (username = $1) DESC
		 LIMIT 1`

	c, err := scanAuth(r.db.QueryRowContext(ctx, query, identifier))
	if err != nil {
		return nil, notFoundOr("credentials.get_for_auth", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetForAuthByUserID(ctx context.Context, userID string) (*models.Credential, error) {
	query := `SELECT ` + authColumns + `
		 FROM credentials
		 WHERE user_id = $1`

	c, err := scanAuth(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, notFoundOr("credentials.get_for_auth_by_user", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.Credential, error) {
	query := `SELECT ` + publicColumns + `
		 FROM credentials
		 WHERE user_id = $1`

	c, err := scanPublic(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, notFoundOr("credentials.get_by_user", err)
	}
	return c, nil
}

func (r *PostgresRepository) exec(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return dbError(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return dbError(op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, "credentials.update_last_login",
		`UPDATE credentials SET last_login = $2, updated_at = $2 WHERE id = $1`, id, at)
}

func (r *PostgresRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string, at time.Time) error {
	return r.exec(ctx, "credentials.update_password",
		`UPDATE credentials SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, hash, at)
}

func (r *PostgresRepository) SetVerificationToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	return r.exec(ctx, "credentials.set_verification_token",
		`UPDATE credentials SET verification_token = $2, token_expires_at = $3 WHERE id = $1`, id, token, expiresAt)
}

func (r *PostgresRepository) UpdateEmailUsername(ctx context.Context, id int64, email, username string, at time.Time) (*models.Credential, error) {
	query :=
		`UPDATE credentials
		 SET email = $2, username = $3, updated_at = $4
		 WHERE id = $1
		 RETURNING ` + publicColumns

	c, err := scanPublic(r.db.QueryRowContext(ctx, query, id, email, username, at))
	if err != nil {
		return nil, notFoundOr("credentials.update_email_username", err)
	}
	return c, nil
}

func (r *PostgresRepository) VerifyByToken(ctx context.Context, token string, now time.Time) (*models.Credential, error) {
	query :=
		`UPDATE credentials
		 SET is_verified = true, verification_token = NULL, token_expires_at = NULL, updated_at = $2
		 WHERE verification_token = $1 AND token_expires_at >= $2
		 RETURNING ` + publicColumns

	c, err := scanPublic(r.db.QueryRowContext(ctx, query, token, now))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrInvalidToken
		}
		return nil, dbError("credentials.verify", err)
	}
	return c, nil
}
