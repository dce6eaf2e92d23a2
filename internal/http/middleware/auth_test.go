package middleware_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/auth"
	"devconnector/internal/http/middleware"
	"devconnector/internal/testsupport"
)

func newProtectedApp(tokens *auth.TokenService) *fiber.App {
	app := fiber.New()
	app.Get("/private", middleware.RequireToken(tokens, testsupport.GetLogger()), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": middleware.CurrentUserID(c)})
	})
	return app
}

func call(t *testing.T, app *fiber.App, headers map[string]string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, "/private", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	return resp.StatusCode, out
}

func TestRequireToken(t *testing.T) {
	tokens := auth.NewTokenService("middleware-secret", time.Hour)
	app := newProtectedApp(tokens)

	token, err := tokens.Issue("user-1")
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		status, body := call(t, app, nil)
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "No token, authorization denied", body["msg"])
	})

	t.Run("garbage token", func(t *testing.T) {
		status, body := call(t, app, map[string]string{middleware.TokenHeader: "not-a-jwt"})
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "Token is not valid", body["msg"])
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		foreign, err := auth.NewTokenService("other-secret", time.Hour).Issue("user-1")
		require.NoError(t, err)

		status, body := call(t, app, map[string]string{middleware.TokenHeader: foreign})
		assert.Equal(t, fiber.StatusUnauthorized, status)
		assert.Equal(t, "Token is not valid", body["msg"])
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := tokens.WithClock(func() time.Time {
			return time.Now().Add(-2 * time.Hour)
		}).Issue("user-1")
		require.NoError(t, err)

		status, _ := call(t, app, map[string]string{middleware.TokenHeader: expired})
		assert.Equal(t, fiber.StatusUnauthorized, status)
	})

	t.Run("x-auth-token header", func(t *testing.T) {
		status, body := call(t, app, map[string]string{middleware.TokenHeader: token})
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "user-1", body["user"])
	})

	t.Run("bearer fallback", func(t *testing.T) {
		status, body := call(t, app, map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, fiber.StatusOK, status)
		assert.Equal(t, "user-1", body["user"])
	})
}
