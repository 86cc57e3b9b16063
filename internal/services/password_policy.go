package services

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

var ErrWeakPassword = fmt.Errorf("%w: password must have at least 8 characters with upper and lower case letters and a digit", ErrValidation)

var passwordCharacterClasses = []struct {
	name  string
	match func(rune) bool
}{
	{name: "an upper case letter", match: unicode.IsUpper},
	{name: "a lower case letter", match: unicode.IsLower},
	{name: "a digit", match: unicode.IsDigit},
}

// ValidatePasswordStrength wraps ErrWeakPassword with the requirements the
// password misses.
func ValidatePasswordStrength(password string) error {
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: at most %d bytes allowed", ErrWeakPassword, maxPasswordBytes)
	}

	missing := make([]string, 0, len(passwordCharacterClasses)+1)
	if len([]rune(password)) < minPasswordLength {
		missing = append(missing, fmt.Sprintf("%d characters", minPasswordLength))
	}
	for _, class := range passwordCharacterClasses {
		if !strings.ContainsFunc(password, class.match) {
			missing = append(missing, class.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %s", ErrWeakPassword, strings.Join(missing, ", "))
}
