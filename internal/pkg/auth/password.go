package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrKeyNotConfigured is returned when no admin API key hash is set.
var ErrKeyNotConfigured = errors.New("api key not configured")

// KeyHasher hashes and verifies secrets such as the admin API key.
type KeyHasher interface {
	Hash(key string) (string, error)
	Compare(hash string, key string) error
}

// BcryptHasher uses bcrypt to hash keys.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates BcryptHasher with provided cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns bcrypt hash for provided key.
func (h *BcryptHasher) Hash(key string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(key), h.cost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Compare checks key against stored hash.
func (h *BcryptHasher) Compare(hash string, key string) error {
	if hash == "" {
		return ErrKeyNotConfigured
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
}

// KeyVerifier checks presented keys against one configured hash.
type KeyVerifier struct {
	hasher KeyHasher
	hash   string
}

// NewKeyVerifier builds KeyVerifier.
func NewKeyVerifier(hasher KeyHasher, hash string) *KeyVerifier {
	return &KeyVerifier{hasher: hasher, hash: hash}
}

// Enabled reports whether a key hash is configured.
func (v *KeyVerifier) Enabled() bool {
	return v.hash != ""
}

// Verify returns nil when key matches the configured hash.
func (v *KeyVerifier) Verify(key string) error {
	if key == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return v.hasher.Compare(v.hash, key)
}
