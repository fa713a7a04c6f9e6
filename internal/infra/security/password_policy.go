package security

import (
	"errors"
	"fmt"

	zxcvbn "github.com/nbutton23/zxcvbn-go"
)

// ErrWeakPassword indicates the candidate password fails the strength policy.
var ErrWeakPassword = errors.New("password does not meet strength requirements")

// PasswordPolicy gates candidate passwords on length and zxcvbn score.
type PasswordPolicy struct {
	minLength int
	minScore  int
}

// NewPasswordPolicy returns the default policy: 8 characters minimum and a
// zxcvbn score of at least 2.
func NewPasswordPolicy() *PasswordPolicy {
	return &PasswordPolicy{minLength: 8, minScore: 2}
}

// Validate checks the candidate password. userInputs (email, name) are fed to
// zxcvbn so passwords derived from account details score poorly.
func (p *PasswordPolicy) Validate(password string, userInputs ...string) error {
	if len(password) < p.minLength {
		return fmt.Errorf("%w: shorter than %d characters", ErrWeakPassword, p.minLength)
	}

	strength := zxcvbn.PasswordStrength(password, userInputs)
	if strength.Score < p.minScore {
		return fmt.Errorf("%w: score %d below %d", ErrWeakPassword, strength.Score, p.minScore)
	}

	return nil
}
