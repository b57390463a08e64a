package auth

import (
	"io"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatedApp(resolver Resolver) *fiber.App {
	app := fiber.New()
	app.Use(Gate(resolver))
	app.Get("/whoami", func(c fiber.Ctx) error {
		return c.SendString(strconv.FormatInt(UserID(c), 10))
	})

	return app
}

func TestGate_Fixed(t *testing.T) {
	app := newGatedApp(Fixed(1))

	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "1", string(body))
}

func TestGate_Unauthorized(t *testing.T) {
	tests := []struct {
		name     string
		resolver Resolver
	}{
		{name: "zero fixed user", resolver: Fixed(0)},
		{name: "resolver rejects", resolver: ResolverFunc(func(fiber.Ctx) (int64, bool) { return 0, false })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newGatedApp(tt.resolver).Test(httptest.NewRequest("GET", "/whoami", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "unauthorized")
		})
	}
}

func TestGate_HeaderResolver(t *testing.T) {
	resolver := ResolverFunc(func(c fiber.Ctx) (int64, bool) {
		id, err := strconv.ParseInt(c.Get("X-User-ID"), 10, 64)

		return id, err == nil && id > 0
	})
	app := newGatedApp(resolver)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("X-User-ID", "42")

	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "42", string(body))
}

func TestRequireSession(t *testing.T) {
	require.NoError(t, RequireSession("ada"))
	require.ErrorIs(t, RequireSession(""), ErrNoSession)
	require.ErrorIs(t, RequireSession("   "), ErrNoSession)
}
