package services

import (
	"errors"
	"testing"
)

func TestNormalizeUsername(t *testing.T) {
	cases := map[string]string{
		"  Alice ":   "alice",
		"lab.tech_1": "lab.tech_1",
		"ab":         "",
		"has space":  "",
		"":           "",
	}
	for raw, expected := range cases {
		if got := NormalizeUsername(raw); got != expected {
			t.Fatalf("NormalizeUsername(%q) = %q, want %q", raw, got, expected)
		}
	}
}

func TestNormalizeCredentialsInputRejectsBlankPassword(t *testing.T) {
	if _, _, err := NormalizeCredentialsInput("alice", "   "); !errors.Is(err, ErrAuthCredentialsInvalid) {
		t.Fatalf("expected ErrAuthCredentialsInvalid, got %v", err)
	}
	username, password, err := NormalizeCredentialsInput(" Alice ", " Secret1x ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if username != "alice" || password != "Secret1x" {
		t.Fatalf("unexpected normalized credentials %q %q", username, password)
	}
}
