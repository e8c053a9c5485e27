package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientID(t *testing.T) {
	app := fiber.New()
	app.Use(ClientID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(ClientIDFrom(c))
	})

	t.Run("echoes a supplied id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(ClientIDHeader, "client-123")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "client-123", resp.Header.Get(ClientIDHeader))
	})

	t.Run("generates an id when missing", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Len(t, resp.Header.Get(ClientIDHeader), 36)
	})

	t.Run("replaces a malformed id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(ClientIDHeader, "bad id with spaces")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.NotEqual(t, "bad id with spaces", resp.Header.Get(ClientIDHeader))
	})
}
