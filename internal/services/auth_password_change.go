package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordChangeInvalidInput = fmt.Errorf("%w: current, new and confirmation passwords are required", ErrValidation)
	ErrPasswordMismatch           = fmt.Errorf("%w: new passwords do not match", ErrValidation)
	ErrInvalidCurrentPassword     = fmt.Errorf("%w: current password is incorrect", ErrValidation)
	ErrNewPasswordMustDiffer      = fmt.Errorf("%w: new password must differ from the current one", ErrValidation)
)

// ChangePassword replaces the password of a signed-in user after checking
// the current one.
func (service *AuthService) ChangePassword(_ context.Context, userID uint, currentPassword string, newPassword string, confirmPassword string) error {
	if currentPassword == "" || newPassword == "" || confirmPassword == "" {
		return ErrPasswordChangeInvalidInput
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	user, err := service.users.FindByID(userID)
	if err != nil {
		return storeError(err, ErrUserNotFound)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCurrentPassword
	}
	if currentPassword == newPassword {
		return ErrNewPasswordMustDiffer
	}
	if err := ValidatePasswordStrength(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return storeError(service.users.UpdatePassword(user.ID, string(hash)), nil)
}
