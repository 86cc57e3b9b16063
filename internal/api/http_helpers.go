package api

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/kombucha-eln/internal/services"
)

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// respondServiceError maps service error categories to HTTP statuses.
func (handler *Handler) respondServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrRemoteConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":              err.Error(),
			"recreate_available": true,
		})
	case errors.Is(err, services.ErrNotFound):
		return apiError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		return apiError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrValidation):
		return apiError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrRemoteFailure):
		handler.logger.Warn("remote notebook failure", "path", c.Path(), "request_id", requestID(c), "error", err)
		return apiError(c, fiber.StatusBadGateway, "eLabFTW request failed")
	default:
		handler.logger.Error("request failed", "path", c.Path(), "request_id", requestID(c), "error", err)
		return apiError(c, fiber.StatusInternalServerError, "internal error")
	}
}

func parseIDParam(c *fiber.Ctx, name string) (uint, error) {
	raw := strings.TrimSpace(c.Params(name))
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return 0, fmt.Errorf("%w: invalid %s", services.ErrValidation, name)
	}
	return uint(value), nil
}

// parseJSONBody decodes a strict JSON body. An empty body decodes to the
// zero value when allowEmpty is set.
func parseJSONBody(c *fiber.Ctx, target any, allowEmpty bool) error {
	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%w: request body is required", services.ErrValidation)
	}
	return services.DecodePatch(body, target)
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}
