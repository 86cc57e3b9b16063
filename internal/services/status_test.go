package services

import (
	"errors"
	"testing"

	"github.com/terraincognita07/kombucha-eln/internal/models"
)

func TestDeriveExperimentStatus(t *testing.T) {
	testCases := []struct {
		statuses []models.BatchStatus
		expected models.ExperimentStatus
	}{
		{nil, models.ExperimentPlanning},
		{[]models.BatchStatus{models.BatchCompleted, models.BatchSetup}, models.ExperimentPlanning},
		{[]models.BatchStatus{models.BatchCompleted, models.BatchCompleted}, models.ExperimentCompleted},
		{[]models.BatchStatus{models.BatchIncubating}, models.ExperimentRunning},
		{[]models.BatchStatus{models.BatchPrepared, models.BatchSampling}, models.ExperimentRunning},
		{[]models.BatchStatus{models.BatchPrepared}, models.ExperimentAnalysis},
		{[]models.BatchStatus{models.BatchPHMeasured, models.BatchCompleted}, models.ExperimentAnalysis},
		{[]models.BatchStatus{models.BatchIncubating, models.BatchSetup}, models.ExperimentPlanning},
	}

	for _, testCase := range testCases {
		if got := DeriveExperimentStatus(testCase.statuses); got != testCase.expected {
			t.Fatalf("DeriveExperimentStatus(%v) = %q, want %q", testCase.statuses, got, testCase.expected)
		}

		reversed := make([]models.BatchStatus, 0, len(testCase.statuses))
		for index := len(testCase.statuses) - 1; index >= 0; index-- {
			reversed = append(reversed, testCase.statuses[index])
		}
		if got := DeriveExperimentStatus(reversed); got != testCase.expected {
			t.Fatalf("DeriveExperimentStatus(%v) = %q, want %q", reversed, got, testCase.expected)
		}
	}
}

func TestEveryBatchActionHasStatusAndTimestamp(t *testing.T) {
	actions := BatchActions()
	if len(actions) != 9 {
		t.Fatalf("expected 9 batch actions, got %d", len(actions))
	}

	seen := make(map[string]bool, len(actions))
	for _, action := range actions {
		if StatusForAction(action) == "" {
			t.Fatalf("action %s has no status", action)
		}
		if timestampField(&models.Batch{}, action) == nil {
			t.Fatalf("action %s has no timestamp field", action)
		}
		if seen[action.String()] {
			t.Fatalf("duplicate action code %s", action)
		}
		seen[action.String()] = true

		parsed, err := ParseBatchAction(action.String())
		if err != nil || parsed != action {
			t.Fatalf("ParseBatchAction(%q) = %v, %v", action.String(), parsed, err)
		}
	}

	if StatusForAction(ActionSCOBYDryWeight) != models.BatchCompleted {
		t.Fatalf("expected scoby_dry_weight to complete the batch")
	}
	if StatusForAction(ActionIncubationEnd) != models.BatchSampling {
		t.Fatalf("expected incubation_end to move the batch to sampling")
	}
}

func TestParseBatchActionRejectsUnknownCode(t *testing.T) {
	_, err := ParseBatchAction("centrifuge")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if BatchAction(42).Valid() || BatchAction(42).String() != "unknown" {
		t.Fatalf("expected out-of-range action to be invalid")
	}
}
