package services

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrAuthCredentialsInvalid = fmt.Errorf("%w: invalid username or password", ErrValidation)
	ErrUsernameInvalid        = fmt.Errorf("%w: username must be 3-32 characters of letters, digits, '.', '_' or '-'", ErrValidation)
	ErrUsernameTaken          = fmt.Errorf("%w: username is already taken", ErrValidation)
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9._-]{3,32}$`)

// NormalizeUsername lowercases and trims the username. It returns "" when the
// result is not a valid username.
func NormalizeUsername(raw string) string {
	username := strings.ToLower(strings.TrimSpace(raw))
	if !usernamePattern.MatchString(username) {
		return ""
	}
	return username
}

func NormalizeCredentialsInput(usernameRaw string, passwordRaw string) (string, string, error) {
	username := NormalizeUsername(usernameRaw)
	password := strings.TrimSpace(passwordRaw)
	if username == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return username, password, nil
}
