package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse_Success(t *testing.T) {
	t.Parallel()

	i := NewTokenIssuer("super-secret")

	tok, err := i.Issue("user-123")
	require.NoError(t, err)

	got, err := i.UserID(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", got)
}

func TestIssue_UniquePerCall(t *testing.T) {
	t.Parallel()

	i := NewTokenIssuer("k")
	a, err := i.Issue("u1")
	require.NoError(t, err)
	b, err := i.Issue("u1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestUserID_OldTokenStillAccepted(t *testing.T) {
	t.Parallel()

	i := NewTokenIssuer("k")
	i.now = func() time.Time { return time.Now().Add(-365 * 24 * time.Hour) }

	tok, err := i.Issue("u1")
	require.NoError(t, err)

	got, err := NewTokenIssuer("k").UserID(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", got)
}

func TestUserID_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenIssuer("right-secret").Issue("u2")
	require.NoError(t, err)

	_, err = NewTokenIssuer("wrong-secret").UserID(tok)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestUserID_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer("k").UserID("not.a.jwt")
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestUserID_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("k").UserID(s)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestUserID_MissingSubject(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("k").UserID(s)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}
