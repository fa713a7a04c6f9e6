package security

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// SaltLength is the number of alphanumeric characters in a freshly
	// generated per-user salt.
	SaltLength = 20

	// MinHashCost is the lowest bcrypt cost the hasher accepts.
	MinHashCost = 10
)

// PasswordHasher salts and hashes passwords with bcrypt. The cost factor is
// injected at construction so it can be tuned without code changes.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher validates the cost factor and returns a hasher.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < MinHashCost {
		return nil, fmt.Errorf("bcrypt cost %d below minimum %d", cost, MinHashCost)
	}
	if cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d above maximum %d", cost, bcrypt.MaxCost)
	}
	return &PasswordHasher{cost: cost}, nil
}

// Hash derives a bcrypt hash over the password concatenated with the stored
// per-user salt. The output embeds bcrypt's own random salt, so two calls with
// identical input produce different hashes.
func (h *PasswordHasher) Hash(plainPassword, salt string) (string, error) {
	sum, err := bcrypt.GenerateFromPassword([]byte(plainPassword+salt), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(sum), nil
}

// Verify recomputes and compares the presented password against the stored
// hash. A malformed stored hash is treated as a non-match, not an error.
func (h *PasswordHasher) Verify(plainPassword, salt, hashedPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword+salt))
	return err == nil
}

// GenerateSalt returns a fresh random alphanumeric salt. Salts are generated
// once per user at account creation and never reused.
func GenerateSalt() (string, error) {
	buf := make([]byte, SaltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	out := make([]byte, SaltLength)
	for i, b := range buf {
		out[i] = saltAlphabet[int(b)%len(saltAlphabet)]
	}
	return string(out), nil
}
