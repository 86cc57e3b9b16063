package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/kombucha-eln/internal/models"
)

// startSession signs a token for user and stores it in the auth cookie. A
// remembered session outlives the browser session.
func (handler *Handler) startSession(c *fiber.Ctx, user *models.User, rememberMe bool) (time.Time, error) {
	ttl := defaultAuthTokenTTL
	if rememberMe {
		ttl = rememberAuthTokenTTL
	}

	token, expiresAt, err := handler.signSessionToken(user.ID, time.Now(), ttl)
	if err != nil {
		return time.Time{}, err
	}

	cookie := handler.sessionCookie(token)
	if rememberMe {
		cookie.Expires = expiresAt
	}
	c.Cookie(cookie)
	return expiresAt, nil
}

func (handler *Handler) endSession(c *fiber.Ctx) {
	cookie := handler.sessionCookie("")
	cookie.Expires = time.Now().Add(-1 * time.Hour)
	c.Cookie(cookie)
}

func (handler *Handler) sessionCookie(value string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     authCookieName,
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
	}
}

func (handler *Handler) signSessionToken(userID uint, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = defaultAuthTokenTTL
	}
	expiresAt := now.Add(ttl)

	claims := authClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(handler.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
