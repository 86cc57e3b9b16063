package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kombucha-eln/internal/models"
)

const (
	authCookieName    = "kombucha_eln_auth"
	requestIDHeader   = "X-Request-Id"
	contextUserKey    = "current_user"
	contextRequestKey = "request_id"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(contextRequestKey).(string)
	return id
}
