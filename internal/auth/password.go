package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords using bcrypt.
//
// bcrypt embeds a per-call random salt in the hash output, so two hashes of
// the same password differ. The work factor is configurable; the zero value
// uses bcrypt's default cost (10).
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost.
// A cost of 0 selects bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash hashes a plaintext password. The returned string embeds the salt and
// cost parameters. Plaintext is never stored; a hashing failure surfaces as
// an error.
func (h *Hasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Verify checks a plaintext password against a bcrypt hash.
// The comparison inside bcrypt is constant-time. A corrupt or foreign hash
// format is treated as a mismatch; an unreadable hash can never authenticate.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
