package logging

import "testing"

func TestRedactMasksSecretKeys(t *testing.T) {
	out := redact([]any{"experiment_id", 7, "api_key", "abc", "Password", "hunter2", "dangling"})

	expected := []any{"experiment_id", 7, "api_key", "[REDACTED]", "Password", "[REDACTED]", "dangling"}
	if len(out) != len(expected) {
		t.Fatalf("expected %d values, got %d (%v)", len(expected), len(out), out)
	}
	for index := range expected {
		if out[index] != expected[index] {
			t.Fatalf("value %d: expected %v, got %v", index, expected[index], out[index])
		}
	}
}

func TestNewFallsBackToDevelopmentMode(t *testing.T) {
	logger, err := New("unknown-mode")
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}
	logger.With("component", "test").Info("hello", "token", "secret")
}
