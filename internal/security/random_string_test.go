package security

import (
	"errors"
	"strings"
	"testing"
)

func TestRandomStringRejectsBadArguments(t *testing.T) {
	t.Parallel()

	if _, err := RandomString(-1, PasswordAlphabet); !errors.Is(err, errNegativeLength) {
		t.Fatalf("expected errNegativeLength, got %v", err)
	}
	if _, err := RandomString(4, ""); !errors.Is(err, errEmptyAlphabet) {
		t.Fatalf("expected errEmptyAlphabet, got %v", err)
	}
	got, err := RandomString(0, "")
	if err != nil || got != "" {
		t.Fatalf("RandomString(0, \"\") = %q, %v; want empty string", got, err)
	}
}

func TestRandomStringStaysInAlphabet(t *testing.T) {
	t.Parallel()

	got, err := RandomString(64, DigitAlphabet)
	if err != nil {
		t.Fatalf("RandomString returned error: %v", err)
	}
	if len(got) != 64 {
		t.Fatalf("len = %d, want 64", len(got))
	}
	for _, char := range got {
		if !strings.ContainsRune(DigitAlphabet, char) {
			t.Fatalf("char %q outside alphabet", char)
		}
	}
}

func TestTemporaryPasswordCoversEveryClass(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		password, err := TemporaryPassword(3)
		if err != nil {
			t.Fatalf("TemporaryPassword returned error: %v", err)
		}
		for _, class := range []string{UpperAlphabet, LowerAlphabet, DigitAlphabet} {
			if !strings.ContainsAny(password, class) {
				t.Fatalf("password %q has no character from %q", password, class)
			}
		}
	}
}

func TestTemporaryPasswordTooShort(t *testing.T) {
	t.Parallel()

	if _, err := TemporaryPassword(2); !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}
