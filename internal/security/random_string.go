package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// Character classes for generated credentials. Look-alike characters
// (0/O, 1/l/I) are left out.
const (
	UpperAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	LowerAlphabet = "abcdefghijkmnopqrstuvwxyz"
	DigitAlphabet = "23456789"

	PasswordAlphabet = UpperAlphabet + LowerAlphabet + DigitAlphabet
)

var (
	ErrPasswordTooShort = errors.New("generated password needs at least 3 characters")
	errNegativeLength   = errors.New("length must be non-negative")
	errEmptyAlphabet    = errors.New("alphabet must not be empty")
)

func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length > 0 && alphabet == "" {
		return "", errEmptyAlphabet
	}

	value := make([]byte, length)
	for index := range value {
		char, err := pick(alphabet)
		if err != nil {
			return "", err
		}
		value[index] = char
	}
	return string(value), nil
}

// TemporaryPassword returns a password holding at least one upper case
// letter, one lower case letter and one digit, in random positions.
func TemporaryPassword(length int) (string, error) {
	if length < 3 {
		return "", ErrPasswordTooShort
	}

	value := make([]byte, 0, length)
	for _, class := range []string{UpperAlphabet, LowerAlphabet, DigitAlphabet} {
		char, err := pick(class)
		if err != nil {
			return "", err
		}
		value = append(value, char)
	}
	rest, err := RandomString(length-len(value), PasswordAlphabet)
	if err != nil {
		return "", err
	}
	value = append(value, rest...)

	for index := len(value) - 1; index > 0; index-- {
		swap, err := randomIndex(index + 1)
		if err != nil {
			return "", err
		}
		value[index], value[swap] = value[swap], value[index]
	}
	return string(value), nil
}

func pick(alphabet string) (byte, error) {
	position, err := randomIndex(len(alphabet))
	if err != nil {
		return 0, err
	}
	return alphabet[position], nil
}

func randomIndex(limit int) (int, error) {
	position, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return 0, err
	}
	return int(position.Int64()), nil
}
