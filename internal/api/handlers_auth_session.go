package api

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kombucha-eln/internal/models"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

type sessionResponse struct {
	User      userResponse `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type userResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	HasAPIKey bool      `json:"has_api_key"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		HasAPIKey: user.HasElabAPIKey(),
		CreatedAt: user.CreatedAt,
	}
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	credentials := credentialsInput{}
	if err := c.BodyParser(&credentials); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.authService.Register(c.UserContext(), credentials.Username, credentials.Password)
	if errors.Is(err, services.ErrUsernameTaken) {
		return apiError(c, fiber.StatusConflict, "username already exists")
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}

	expiresAt, err := handler.startSession(c, &user, credentials.RememberMe)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	handler.logger.Info("user registered", "user_id", user.ID, "request_id", requestID(c))
	return c.Status(fiber.StatusCreated).JSON(sessionResponse{User: newUserResponse(&user), ExpiresAt: expiresAt})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	credentials := credentialsInput{}
	if err := c.BodyParser(&credentials); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	limiterKey := requestLimiterKey(c)
	now := time.Now()
	if retryAfter, blocked := handler.loginLimiter.blocked(limiterKey, now); blocked {
		c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		return apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
	}

	user, err := handler.authService.Authenticate(c.UserContext(), credentials.Username, credentials.Password)
	if errors.Is(err, services.ErrAuthCredentialsInvalid) {
		handler.loginLimiter.fail(limiterKey, now)
		return apiError(c, fiber.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.loginLimiter.clear(limiterKey)

	expiresAt, err := handler.startSession(c, &user, credentials.RememberMe)
	if err != nil {
		return apiError(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.JSON(sessionResponse{User: newUserResponse(&user), ExpiresAt: expiresAt})
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	handler.endSession(c)
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) CurrentUser(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(newUserResponse(user))
}

func (handler *Handler) UpdateAPIKey(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := apiKeyInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	if err := handler.authService.UpdateAPIKey(c.UserContext(), user.ID, input.APIKey); err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.logger.Info("eLabFTW api key updated", "user_id", user.ID, "configured", input.APIKey != "")
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	input := passwordChangeInput{}
	if err := c.BodyParser(&input); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	if err := handler.authService.ChangePassword(c.UserContext(), user.ID, input.CurrentPassword, input.NewPassword, input.ConfirmPassword); err != nil {
		return handler.respondServiceError(c, err)
	}
	handler.logger.Info("password changed", "user_id", user.ID, "request_id", requestID(c))
	return c.JSON(fiber.Map{"ok": true})
}
