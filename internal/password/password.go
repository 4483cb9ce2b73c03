package password

// Package password provides bcrypt hashing and verification for stored user
// credentials.

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrHashComputation is returned when bcrypt produces an invalid or
// truncated hash. It is fatal and never retried.
var ErrHashComputation = errors.New("password hash computation failed")

// minHashLength is the length of a well-formed bcrypt hash string.
const minHashLength = 60

// Hash computes a bcrypt hash of the given plaintext. A zero cost selects
// bcrypt's default; otherwise cost must be within bcrypt's 4..31 range.
func Hash(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("%w: cost must be between %d and %d, got %d",
			ErrHashComputation, bcrypt.MinCost, bcrypt.MaxCost, cost)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashComputation, err)
	}
	if len(hashed) < minHashLength {
		return "", fmt.Errorf("%w: hash too short (%d bytes)", ErrHashComputation, len(hashed))
	}
	return string(hashed), nil
}

// Verify compares a submitted plaintext password against a stored bcrypt
// hash. The comparison is constant time. A mismatch returns (false, nil);
// an error means the stored hash is unusable.
func Verify(plain, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("compare password hash: %w", err)
}

// BcryptVerifier adapts Verify to the ports.PasswordVerifier contract.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(plain, hash string) (bool, error) {
	return Verify(plain, hash)
}
