package middleware

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"devconnector/internal/auth"
)

// TokenHeader carries the bearer token on every private request.
const TokenHeader = "x-auth-token"

const userIDKey = "userID"

// RequireToken middleware verifies the request token and stores the user id it carries.
// Expects: x-auth-token: <token>, or Authorization: Bearer <token>
func RequireToken(tokens *auth.TokenService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "No token, authorization denied",
			})
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			logger.Debug("Rejected token", slog.String("path", c.Path()), slog.Any("error", err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"msg": "Token is not valid",
			})
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// CurrentUserID returns the user id RequireToken stored, or "" on public routes.
func CurrentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals(userIDKey).(string)
	return userID
}

func tokenFromRequest(c *fiber.Ctx) string {
	if token := strings.TrimSpace(c.Get(TokenHeader)); token != "" {
		return token
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}
