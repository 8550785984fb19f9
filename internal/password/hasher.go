package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 12

// Argon2id parameters (OWASP baseline).
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

var errInvalidHash = oops.Code("PASSWORD_INVALID_HASH").Errorf("invalid hash format")

// Hasher produces and checks self-describing password hashes.
type Hasher interface {
	// Hash fails with common.ErrEmptyInput if password is blank.
	Hash(password string) (string, error)

	// Verify fails with common.ErrEmptyInput if either input is blank.
	// A wrong password is (false, nil), never an error.
	Verify(password, hash string) (bool, error)

	// NeedsUpgrade reports whether hash was produced with other parameters
	// than this hasher would use today.
	NeedsUpgrade(hash string) bool
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func emptyInput(field string) error {
	return oops.Code("PASSWORD_EMPTY_INPUT").With("field", field).Wrapf(common.ErrEmptyInput, "%s is blank", field)
}

// BcryptHasher hashes with bcrypt and verifies both bcrypt and argon2id
// hashes, so credentials created with either algorithm keep working.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher with the given cost. Costs outside
// bcrypt's accepted range fall back to DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if blank(password) {
		return "", emptyInput("password")
	}
	if len(password) > MaxBytes {
		return "", &PolicyError{Violations: []Rule{RuleMaxLength}}
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("PASSWORD_HASH_FAILED").Wrap(err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(password, hash string) (bool, error) {
	if blank(password) {
		return false, emptyInput("password")
	}
	if blank(hash) {
		return false, emptyInput("hash")
	}
	if isArgon2id(hash) {
		return verifyArgon2id(password, hash)
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, oops.Code("PASSWORD_INVALID_HASH").Wrap(err)
	}
}

func (h *BcryptHasher) NeedsUpgrade(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost != h.cost
}

// Argon2idHasher hashes with argon2id in PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
type Argon2idHasher struct{}

func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

func (h *Argon2idHasher) Hash(password string) (string, error) {
	if blank(password) {
		return "", emptyInput("password")
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("PASSWORD_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2idHasher) Verify(password, hash string) (bool, error) {
	if blank(password) {
		return false, emptyInput("password")
	}
	if blank(hash) {
		return false, emptyInput("hash")
	}
	if !isArgon2id(hash) {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, oops.Code("PASSWORD_INVALID_HASH").Wrap(err)
		}
		return true, nil
	}
	return verifyArgon2id(password, hash)
}

func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	p, err := parseArgon2id(hash)
	if err != nil {
		return true
	}
	return p.memory != argon2Memory || p.time != argon2Time || p.threads != argon2Threads
}

func isArgon2id(hash string) bool {
	return strings.HasPrefix(hash, "$argon2id$")
}

type argon2Params struct {
	memory, time, threads uint32
	salt, key             []byte
}

func parseArgon2id(encoded string) (*argon2Params, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, errInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, oops.Code("PASSWORD_INVALID_HASH").Wrap(err)
	}
	if version != argon2.Version {
		return nil, oops.Code("PASSWORD_INVALID_HASH").Errorf("unsupported argon2 version %d", version)
	}

	p := &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, oops.Code("PASSWORD_INVALID_HASH").Wrap(err)
	}
	if p.threads == 0 || p.threads > 255 {
		return nil, oops.Code("PASSWORD_INVALID_HASH").Errorf("threads value %d out of range", p.threads)
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, oops.Code("PASSWORD_INVALID_HASH").Wrap(err)
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, oops.Code("PASSWORD_INVALID_HASH").Wrap(err)
	}
	if len(p.key) == 0 || len(p.key) > 1<<10 {
		return nil, oops.Code("PASSWORD_INVALID_HASH").Errorf("invalid key length %d", len(p.key))
	}
	return p, nil
}

func verifyArgon2id(password, encoded string) (bool, error) {
	p, err := parseArgon2id(encoded)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), p.salt, p.time, p.memory, uint8(p.threads), uint32(len(p.key)))
	return subtle.ConstantTimeCompare(computed, p.key) == 1, nil
}

// NewHasher returns the hasher for the named algorithm ("bcrypt" or
// "argon2id"). Unknown names select bcrypt.
func NewHasher(algorithm string, bcryptCost int) Hasher {
	if strings.EqualFold(algorithm, "argon2id") {
		return NewArgon2idHasher()
	}
	return NewBcryptHasher(bcryptCost)
}
