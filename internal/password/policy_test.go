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

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []Rule
	}{
		{name: "valid", password: "Secret#12"},
		{name: "valid unicode", password: "Пароль_2024"},
		{name: "short reports everything at once", password: "short", want: []Rule{RuleMinLength, RuleDigit, RuleUpper, RuleSpecial}},
		{name: "empty", password: "", want: []Rule{RuleMinLength, RuleDigit, RuleUpper, RuleLower, RuleSpecial}},
		{name: "no digit", password: "Secret#ab", want: []Rule{RuleDigit}},
		{name: "no upper", password: "secret#12", want: []Rule{RuleUpper}},
		{name: "no lower", password: "SECRET#12", want: []Rule{RuleLower}},
		{name: "no special", password: "Secret123", want: []Rule{RuleSpecial}},
		{name: "space counts as special", password: "Secret 12", want: nil},
		{name: "seven chars", password: "Sec#123", want: []Rule{RuleMinLength}},
		{name: "72 bytes", password: "Aa1!" + strings.Repeat("x", 68)},
		{name: "73 bytes", password: "Aa1!" + strings.Repeat("x", 69), want: []Rule{RuleMaxLength}},
		{name: "multibyte over the byte limit", password: "Aa1!" + strings.Repeat("ж", 35), want: []Rule{RuleMaxLength}},
	}

	p := DefaultPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Validate(tt.password)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrPasswordPolicy))

			var pe *PolicyError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.want, pe.Violations)
		})
	}
}

func TestPolicy_MinLengthOverride(t *testing.T) {
	p := Policy{MinLength: 12}
	err := p.Validate("Secret#12")

	var pe *PolicyError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, []Rule{RuleMinLength}, pe.Violations)
	assert.Contains(t, pe.Error(), "at least 12 characters")
}

func TestPolicy_Entropy(t *testing.T) {
	p := Policy{MinLength: 8, MinEntropyBits: 60}

	err := p.Validate("Aaaaaaa1!")
	var pe *PolicyError
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Has(RuleEntropy))

	require.NoError(t, p.Validate("Tr0ub4dor&3-horse-battery"))
}

func TestPolicyError_Message(t *testing.T) {
	err := DefaultPolicy().Validate("short")
	require.Error(t, err)
	assert.Equal(t,
		"password must be at least 8 characters long; must contain a digit; must contain an uppercase letter; must contain a character that is neither a letter nor a digit",
		err.Error())
}

func TestNewPolicyError(t *testing.T) {
	pe := NewPolicyError([]string{"digit", "special"})
	assert.True(t, errors.Is(pe, common.ErrPasswordPolicy))
	assert.True(t, pe.Has(RuleDigit))
	assert.False(t, pe.Has(RuleUpper))
	assert.Equal(t, "password must contain a digit; must contain a character that is neither a letter nor a digit", pe.Error())
}

// Anything the policy accepts must survive a bcrypt round trip.
func TestPolicy_AcceptedPasswordsHash(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	for _, n := range []int{0, 60, 68, 69, 80} {
		pw := "Aa1!" + strings.Repeat("x", n)
		if DefaultPolicy().Validate(pw) != nil {
			continue
		}
		hash, err := h.Hash(pw)
		require.NoError(t, err, "len %d", len(pw))
		ok, err := h.Verify(pw, hash)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
