package accounts

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the adaptive hashing cost used when no explicit cost
// is configured.
const DefaultBcryptCost = 14

// Hasher carries the process-wide hashing parameters.
type Hasher struct {
	cost int
}

var _ PasswordAuthenticator = (*Hasher)(nil)

// NewHasher returns a Hasher with the given bcrypt cost. Costs outside the
// bcrypt range fall back to DefaultBcryptCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Hasher{cost: cost}
}

// HashPassword will generate a salted password hash
func (h *Hasher) HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(b), err
}

// ComparePasswordAndHash will validate the given cleartext password against
// the hashed password. Mismatches and malformed hashes both return
// ErrInvalidCredentials; neither is distinguishable by the caller.
func (h *Hasher) ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword hashes with the default cost.
func HashPassword(password string) (string, error) {
	return NewHasher(DefaultBcryptCost).HashPassword(password)
}

// ComparePasswordAndHash validates cleartext against a hash using the
// default parameters.
func ComparePasswordAndHash(password, hash string) error {
	return NewHasher(DefaultBcryptCost).ComparePasswordAndHash(password, hash)
}
