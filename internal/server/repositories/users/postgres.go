// Package users stores the profile rows that credentials belong to.
package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/samber/oops"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (name, address, phone, gender, birth_date)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`

	var birthDate sql.NullTime
	if user.BirthDate != nil {
		birthDate = sql.NullTime{Time: *user.BirthDate, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Name, user.Address, user.Phone, user.Gender, birthDate).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, oops.Code("DB_ERROR").With("op", "users.create").Wrap(dbx.Persistence(err))
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT id, name, address, phone, gender, birth_date, created_at, updated_at
		 FROM users
		 WHERE id = $1`

	user := &models.User{}
	var birthDate sql.NullTime
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Address, &user.Phone, &user.Gender,
		&birthDate, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, oops.Code("DB_ERROR").With("op", "users.get").Wrap(dbx.Persistence(err))
	}
	if birthDate.Valid {
		user.BirthDate = &birthDate.Time
	}

	return user, nil
}
