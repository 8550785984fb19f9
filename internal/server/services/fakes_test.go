package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/authkeeper/internal/server/repositories/users"
)

type fakeUsersRepo struct {
	mu        sync.Mutex
	rows      map[string]*models.User
	seq       int
	createErr error
	getErr    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{rows: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	u.ID = fmt.Sprintf("u-%d", f.seq)
	cp := *u
	f.rows[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeCredsRepo struct {
	mu   sync.Mutex
	rows map[int64]*models.Credential
	seq  int64

	createErr    error
	getErr       error
	setTokenErr  error
	passwordSets int
}

func newFakeCredsRepo() *fakeCredsRepo {
	return &fakeCredsRepo{rows: map[int64]*models.Credential{}}
}

func (f *fakeCredsRepo) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, r := range f.rows {
		if r.Email == c.Email {
			return nil, common.ErrDuplicateEmail
		}
		if r.Username == c.Username {
			return nil, common.ErrDuplicateUsername
		}
	}
	f.seq++
	c.ID = f.seq
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	f.rows[c.ID] = &cp
	return c, nil
}

func (f *fakeCredsRepo) find(match func(*models.Credential) bool) (*models.Credential, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, r := range f.rows {
		if match(r) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeCredsRepo) GetForAuth(ctx context.Context, identifier string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(c *models.Credential) bool { return c.Username == identifier || c.Email == identifier })
}

func (f *fakeCredsRepo) GetForAuthByUserID(ctx context.Context, userID string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find(func(c *models.Credential) bool { return c.UserID == userID })
}

func (f *fakeCredsRepo) GetByUserID(ctx context.Context, userID string) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, err := f.find(func(c *models.Credential) bool { return c.UserID == userID })
	if err != nil {
		return nil, err
	}
	public := c.Public()
	return &public, nil
}

func (f *fakeCredsRepo) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return common.ErrNotFound
	}
	c.LastLogin = &at
	return nil
}

func (f *fakeCredsRepo) UpdateEmailUsername(ctx context.Context, id int64, email, username string, at time.Time) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for otherID, r := range f.rows {
		if otherID == id {
			continue
		}
		if r.Email == email {
			return nil, common.ErrDuplicateEmail
		}
		if r.Username == username {
			return nil, common.ErrDuplicateUsername
		}
	}
	c, ok := f.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	c.Email, c.Username, c.UpdatedAt = email, username, at
	public := c.Public()
	return &public, nil
}

func (f *fakeCredsRepo) UpdatePasswordHash(ctx context.Context, id int64, hash string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok {
		return common.ErrNotFound
	}
	c.PasswordHash = hash
	f.passwordSets++
	return nil
}

func (f *fakeCredsRepo) SetVerificationToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setTokenErr != nil {
		return f.setTokenErr
	}
	c, ok := f.rows[id]
	if !ok {
		return common.ErrNotFound
	}
	c.VerificationToken = &token
	c.TokenExpiresAt = &expiresAt
	return nil
}

func (f *fakeCredsRepo) VerifyByToken(ctx context.Context, token string, now time.Time) (*models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.rows {
		if c.VerificationToken != nil && *c.VerificationToken == token && !c.TokenExpiresAt.Before(now) {
			c.IsVerified = true
			c.VerificationToken = nil
			c.TokenExpiresAt = nil
			public := c.Public()
			return &public, nil
		}
	}
	return nil, common.ErrInvalidToken
}

func (f *fakeCredsRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	c *fakeCredsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository {
	return m.u
}

func (m *fakeRepoManager) Credentials(db dbx.DBTX) credentials.Repository {
	return m.c
}

type fakeNotifier struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func (n *fakeNotifier) SendVerification(ctx context.Context, email, username, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.tokens == nil {
		n.tokens = map[string]string{}
	}
	n.tokens[email] = token
	return n.err
}
