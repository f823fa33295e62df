package security

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matthewhartstonge/argon2"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used for new bcrypt hashes.
const DefaultBcryptCost = 10

// MaxPasswordBytes is the longest password bcrypt can hash without truncation.
const MaxPasswordBytes = 72

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2ID = "argon2id"
)

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	// Hash returns a salted one-way encoding of password.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A malformed hash never
	// matches.
	Verify(password, hash string) bool
}

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. A cost outside bcrypt's range falls
// back to DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Verify relies on bcrypt's constant-time comparison. Passwords longer than
// MaxPasswordBytes never match, since bcrypt only reads that many bytes.
func (h *BcryptHasher) Verify(password, hash string) bool {
	if len(password) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Argon2Hasher hashes passwords with argon2id in PHC encoding.
type Argon2Hasher struct {
	config argon2.Config
}

// NewArgon2Hasher creates an Argon2Hasher with the library defaults.
func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{config: argon2.DefaultConfig()}
}

func (h *Argon2Hasher) Hash(password string) (string, error) {
	encoded, err := h.config.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

func (h *Argon2Hasher) Verify(password, hash string) bool {
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(hash))
	if err != nil {
		return false
	}
	return ok
}

// MultiHasher writes hashes with one algorithm and verifies hashes produced by
// any supported algorithm, so switching the configured algorithm does not lock
// out existing accounts.
type MultiHasher struct {
	primary PasswordHasher
	bcrypt  *BcryptHasher
	argon2  *Argon2Hasher
}

// NewPasswordHasher returns a MultiHasher that writes with algorithm.
func NewPasswordHasher(algorithm string, bcryptCost int) (*MultiHasher, error) {
	h := &MultiHasher{
		bcrypt: NewBcryptHasher(bcryptCost),
		argon2: NewArgon2Hasher(),
	}

	switch strings.ToLower(algorithm) {
	case "", AlgorithmBcrypt:
		h.primary = h.bcrypt
	case AlgorithmArgon2ID:
		h.primary = h.argon2
	default:
		return nil, fmt.Errorf("unsupported password hash algorithm %q", algorithm)
	}

	return h, nil
}

func (h *MultiHasher) Hash(password string) (string, error) {
	return h.primary.Hash(password)
}

func (h *MultiHasher) Verify(password, hash string) bool {
	switch {
	case strings.HasPrefix(hash, "$argon2"):
		return h.argon2.Verify(password, hash)
	case strings.HasPrefix(hash, "$2"):
		return h.bcrypt.Verify(password, hash)
	default:
		return false
	}
}
