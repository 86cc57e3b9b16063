package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/kombucha-eln/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthUserRepository interface {
	ExistsByNormalizedUsername(username string) (bool, error)
	FindByNormalizedUsername(username string) (models.User, error)
	FindByID(userID uint) (models.User, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string) error
	UpdateElabAPIKey(userID uint, apiKey string) error
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

func (service *AuthService) Register(_ context.Context, usernameRaw string, password string) (models.User, error) {
	username := NormalizeUsername(usernameRaw)
	if username == "" {
		return models.User{}, ErrUsernameInvalid
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedUsername(username)
	if err != nil {
		return models.User{}, storeError(err, nil)
	}
	if exists {
		return models.User{}, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, storeError(err, nil)
	}
	return user, nil
}

// Authenticate returns ErrAuthCredentialsInvalid for unknown users and wrong
// passwords alike.
func (service *AuthService) Authenticate(_ context.Context, usernameRaw string, passwordRaw string) (models.User, error) {
	username, password, err := NormalizeCredentialsInput(usernameRaw, passwordRaw)
	if err != nil {
		return models.User{}, err
	}

	user, err := service.users.FindByNormalizedUsername(username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	if err != nil {
		return models.User{}, storeError(err, nil)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(_ context.Context, userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if err != nil {
		return models.User{}, storeError(err, ErrUserNotFound)
	}
	return user, nil
}

// UpdateAPIKey stores the user's eLabFTW key. An empty key removes it.
func (service *AuthService) UpdateAPIKey(_ context.Context, userID uint, apiKey string) error {
	if _, err := service.users.FindByID(userID); err != nil {
		return storeError(err, ErrUserNotFound)
	}
	return storeError(service.users.UpdateElabAPIKey(userID, strings.TrimSpace(apiKey)), nil)
}

func (service *AuthService) ResetPassword(_ context.Context, usernameRaw string, newPassword string) error {
	username := NormalizeUsername(usernameRaw)
	if username == "" {
		return ErrUsernameInvalid
	}
	user, err := service.users.FindByNormalizedUsername(username)
	if err != nil {
		return storeError(err, ErrUserNotFound)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return storeError(service.users.UpdatePassword(user.ID, string(hash)), nil)
}
