package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives a one-way bcrypt hash from the given plaintext
// password. The returned string is self-describing: the cost factor and
// random salt are embedded alongside the digest, so verification needs
// no side channel.
//
// The plaintext is never logged or persisted. Returns an error if the
// password is empty or exceeds bcrypt's 72-byte input limit.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("empty password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the
// stored bcrypt hash. A malformed stored hash is treated as a
// verification failure, never a crash.
func VerifyPassword(password, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)) == nil
}

// dummyPasswordHash is a valid bcrypt hash at the default cost. It
// backs DummyVerifyPassword and never corresponds to any account.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// DummyVerifyPassword burns a bcrypt comparison against a fixed
// precomputed hash and discards the result. Callers that find no
// account for a login attempt run it so the rejection costs the same
// as a real password check.
func DummyVerifyPassword(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyPasswordHash), []byte(password))
}
