package services

import (
	"context"
	"errors"
	"testing"
)

func TestChangePasswordValidation(t *testing.T) {
	fixture := newWorkflowFixture(t)
	auth := NewAuthService(fixture.store.Users)
	ctx := context.Background()

	user, err := auth.Register(ctx, "carol", "StrongPass1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name    string
		current string
		next    string
		confirm string
		want    error
	}{
		{name: "missing input", current: "", next: "NewPass12", confirm: "NewPass12", want: ErrPasswordChangeInvalidInput},
		{name: "mismatch", current: "StrongPass1", next: "NewPass12", confirm: "NewPass13", want: ErrPasswordMismatch},
		{name: "wrong current", current: "WrongPass1", next: "NewPass12", confirm: "NewPass12", want: ErrInvalidCurrentPassword},
		{name: "same password", current: "StrongPass1", next: "StrongPass1", confirm: "StrongPass1", want: ErrNewPasswordMustDiffer},
		{name: "weak password", current: "StrongPass1", next: "weakpass", confirm: "weakpass", want: ErrWeakPassword},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := auth.ChangePassword(ctx, user.ID, tc.current, tc.next, tc.confirm)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation category, got %v", err)
			}
		})
	}
}

func TestChangePasswordReplacesHash(t *testing.T) {
	fixture := newWorkflowFixture(t)
	auth := NewAuthService(fixture.store.Users)
	ctx := context.Background()

	user, err := auth.Register(ctx, "carol", "StrongPass1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := auth.ChangePassword(ctx, user.ID, "StrongPass1", "Fresher2Pass", "Fresher2Pass"); err != nil {
		t.Fatalf("ChangePassword() unexpected error: %v", err)
	}

	if _, err := auth.Authenticate(ctx, "carol", "StrongPass1"); !errors.Is(err, ErrAuthCredentialsInvalid) {
		t.Fatalf("expected old password to stop working, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, "carol", "Fresher2Pass"); err != nil {
		t.Fatalf("expected new password to work, got %v", err)
	}
}
