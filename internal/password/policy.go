package password

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

// Rule identifies one password requirement. The string values are part of
// the HTTP error payload.
type Rule string

const (
	RuleMinLength Rule = "min_length"
	RuleMaxLength Rule = "max_length"
	RuleDigit     Rule = "digit"
	RuleUpper     Rule = "uppercase"
	RuleLower     Rule = "lowercase"
	RuleSpecial   Rule = "special"
	RuleEntropy   Rule = "entropy"
)

// DefaultMinLength is the shortest accepted password.
const DefaultMinLength = 8

// MaxBytes is the longest accepted password in bytes. bcrypt ignores or
// rejects anything beyond it.
const MaxBytes = 72

var ruleText = map[Rule]string{
	RuleMinLength: "must be at least %d characters long",
	RuleMaxLength: "must be at most %d bytes long",
	RuleDigit:     "must contain a digit",
	RuleUpper:     "must contain an uppercase letter",
	RuleLower:     "must contain a lowercase letter",
	RuleSpecial:   "must contain a character that is neither a letter nor a digit",
	RuleEntropy:   "is too easy to guess",
}

// PolicyError lists every rule a password failed. It matches
// common.ErrPasswordPolicy under errors.Is.
type PolicyError struct {
	Violations []Rule
	minLength  int
}

func (e *PolicyError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, r := range e.Violations {
		msgs = append(msgs, e.describe(r))
	}
	return "password " + strings.Join(msgs, "; ")
}

func (e *PolicyError) describe(r Rule) string {
	text, ok := ruleText[r]
	if !ok {
		return string(r)
	}
	switch r {
	case RuleMinLength:
		n := e.minLength
		if n == 0 {
			n = DefaultMinLength
		}
		return fmt.Sprintf(text, n)
	case RuleMaxLength:
		return fmt.Sprintf(text, MaxBytes)
	}
	return text
}

func (e *PolicyError) Is(target error) bool {
	return target == common.ErrPasswordPolicy
}

// Has reports whether r is among the violations.
func (e *PolicyError) Has(r Rule) bool {
	for _, v := range e.Violations {
		if v == r {
			return true
		}
	}
	return false
}

// NewPolicyError rebuilds a PolicyError from rule names, e.g. ones decoded
// from an HTTP error payload.
func NewPolicyError(rules []string) *PolicyError {
	e := &PolicyError{Violations: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		e.Violations = append(e.Violations, Rule(r))
	}
	return e
}

// Policy is the stateless password strength validator.
type Policy struct {
	MinLength int
	// MinEntropyBits enables an additional guessability check when > 0.
	MinEntropyBits float64
}

// DefaultPolicy returns the policy with the standard rule set and no
// entropy requirement.
func DefaultPolicy() Policy {
	return Policy{MinLength: DefaultMinLength}
}

// Validate checks every rule independently and returns a *PolicyError
// naming all of the violated ones, or nil.
func (p Policy) Validate(password string) error {
	minLength := p.MinLength
	if minLength <= 0 {
		minLength = DefaultMinLength
	}

	var hasDigit, hasUpper, hasLower, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}

	var violations []Rule
	if len([]rune(password)) < minLength {
		violations = append(violations, RuleMinLength)
	}
	if len(password) > MaxBytes {
		violations = append(violations, RuleMaxLength)
	}
	if !hasDigit {
		violations = append(violations, RuleDigit)
	}
	if !hasUpper {
		violations = append(violations, RuleUpper)
	}
	if !hasLower {
		violations = append(violations, RuleLower)
	}
	if !hasSpecial {
		violations = append(violations, RuleSpecial)
	}
	if p.MinEntropyBits > 0 && passwordvalidator.Validate(password, p.MinEntropyBits) != nil {
		violations = append(violations, RuleEntropy)
	}

	if len(violations) == 0 {
		return nil
	}
	return &PolicyError{Violations: violations, minLength: minLength}
}
