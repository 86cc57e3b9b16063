package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error categories. Every error returned by a service wraps exactly one of
// these, so callers can switch on the category with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidState   = errors.New("invalid state")
	ErrValidation     = errors.New("validation failed")
	ErrRemoteConflict = errors.New("remote conflict")
	ErrStoreFailure   = errors.New("store failure")
)

var (
	ErrExperimentNotFound = fmt.Errorf("experiment %w", ErrNotFound)
	ErrBatchNotFound      = fmt.Errorf("batch %w", ErrNotFound)
	ErrTimepointNotFound  = fmt.Errorf("timepoint %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)

	ErrNoCurrentTimepoint       = fmt.Errorf("%w: experiment has no current timepoint", ErrInvalidState)
	ErrNoNextTimepoint          = fmt.Errorf("%w: no next timepoint", ErrInvalidState)
	ErrTimepointInUse           = fmt.Errorf("%w: timepoint is the current timepoint", ErrInvalidState)
	ErrTimepointHasMeasurements = fmt.Errorf("%w: timepoint has measurements", ErrInvalidState)
	ErrExperimentNotCompletable = fmt.Errorf("%w: final timepoint is not completed", ErrInvalidState)
	ErrExperimentCompleted      = fmt.Errorf("%w: experiment is already completed", ErrInvalidState)

	ErrTimepointMismatch        = fmt.Errorf("%w: batch and timepoint belong to different experiments", ErrValidation)
	ErrTimepointNotInExperiment = fmt.Errorf("%w: timepoint belongs to another experiment", ErrValidation)
	ErrAPIKeyMissing            = fmt.Errorf("%w: eLabFTW API key is not configured", ErrValidation)
)

// validationError builds a field-specific ValidationError.
func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeError wraps a repository failure. Record-not-found maps to notFound
// when one is given.
func storeError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	if isCategorized(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStoreFailure, err)
}

func isCategorized(err error) bool {
	for _, category := range []error{ErrNotFound, ErrInvalidState, ErrValidation, ErrRemoteConflict, ErrRemoteFailure, ErrStoreFailure} {
		if errors.Is(err, category) {
			return true
		}
	}
	return false
}
