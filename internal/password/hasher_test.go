package password

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// Low costs keep the suite fast; the production default is covered separately.
func testHashers() map[string]Hasher {
	return map[string]Hasher{
		"bcrypt":   NewBcryptHasher(bcrypt.MinCost),
		"argon2id": NewArgon2idHasher(),
	}
}

func TestHasher_RoundTrip(t *testing.T) {
	passwords := []string{"Secret#1", "pässwörd", "a", "with space inside", strings.Repeat("x", 64)}

	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			for _, p := range passwords {
				hash, err := h.Hash(p)
				require.NoError(t, err)
				assert.NotEqual(t, p, hash)

				ok, err := h.Verify(p, hash)
				require.NoError(t, err)
				assert.True(t, ok, "password %q must verify", p)
			}
		})
	}
}

func TestBcryptHasher_TooLong(t *testing.T) {
	_, err := NewBcryptHasher(bcrypt.MinCost).Hash("Aa1!" + strings.Repeat("x", 80))

	var pe *PolicyError
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Has(RuleMaxLength))
	assert.ErrorIs(t, err, common.ErrPasswordPolicy)
}

func TestHasher_SaltedHashesDiffer(t *testing.T) {
	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			a, err := h.Hash("Secret#1")
			require.NoError(t, err)
			b, err := h.Hash("Secret#1")
			require.NoError(t, err)
			assert.NotEqual(t, a, b)
		})
	}
}

func TestHasher_WrongPasswordIsFalseNotError(t *testing.T) {
	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			hash, err := h.Hash("Secret#1")
			require.NoError(t, err)

			ok, err := h.Verify("Secret#2", hash)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestHasher_BlankInputs(t *testing.T) {
	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			_, err := h.Hash("")
			assert.True(t, errors.Is(err, common.ErrEmptyInput))

			_, err = h.Hash("   ")
			assert.True(t, errors.Is(err, common.ErrEmptyInput))

			_, err = h.Verify("", "$2a$04$abc")
			assert.True(t, errors.Is(err, common.ErrEmptyInput))

			_, err = h.Verify("Secret#1", "")
			assert.True(t, errors.Is(err, common.ErrEmptyInput))
		})
	}
}

func TestHasher_MalformedHash(t *testing.T) {
	for name, h := range testHashers() {
		t.Run(name, func(t *testing.T) {
			ok, err := h.Verify("Secret#1", "$argon2id$garbage")
			require.Error(t, err)
			assert.False(t, ok)
		})
	}
}

func TestHasher_CrossAlgorithmVerify(t *testing.T) {
	bc := NewBcryptHasher(bcrypt.MinCost)
	ar := NewArgon2idHasher()

	bHash, err := bc.Hash("Secret#1")
	require.NoError(t, err)
	aHash, err := ar.Hash("Secret#1")
	require.NoError(t, err)

	ok, err := ar.Verify("Secret#1", bHash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = bc.Verify("Secret#1", aHash)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, ar.NeedsUpgrade(bHash))
	assert.False(t, ar.NeedsUpgrade(aHash))
	assert.True(t, bc.NeedsUpgrade(aHash))
	assert.False(t, bc.NeedsUpgrade(bHash))
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	h := NewBcryptHasher(0)
	assert.Equal(t, DefaultBcryptCost, h.cost)

	h = NewBcryptHasher(bcrypt.MaxCost + 1)
	assert.Equal(t, DefaultBcryptCost, h.cost)

	low := NewBcryptHasher(bcrypt.MinCost)
	hash, err := low.Hash("Secret#1")
	require.NoError(t, err)
	assert.True(t, h.NeedsUpgrade(hash))
	assert.True(t, strings.HasPrefix(hash, "$2a$04$"))
}

func TestNewHasher(t *testing.T) {
	assert.IsType(t, &Argon2idHasher{}, NewHasher("argon2id", 0))
	assert.IsType(t, &Argon2idHasher{}, NewHasher("ARGON2ID", 0))
	assert.IsType(t, &BcryptHasher{}, NewHasher("bcrypt", 10))
	assert.IsType(t, &BcryptHasher{}, NewHasher("", 10))
}
