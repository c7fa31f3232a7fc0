package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(cfg))
	app.Post("/chat", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Post("/tickets", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()

	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestValidQueryPasses(t *testing.T) {
	app := testApp(Config{})
	assert.Equal(t, fiber.StatusOK, post(t, app, "/chat", `{"query":"What is your refund policy?"}`))
}

func TestMissingQueryRejected(t *testing.T) {
	app := testApp(Config{})

	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/chat", `{}`))
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/chat", `{"query":"   "}`))
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/tickets", `{"priority":"high"}`))
}

func TestOversizedQueryRejected(t *testing.T) {
	app := testApp(Config{MaxQueryLength: 20})

	long := strings.Repeat("a", 21)
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/chat", `{"query":"`+long+`"}`))
}

func TestMarkupInjectionRejected(t *testing.T) {
	app := testApp(Config{})

	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/chat", `{"query":"<script>alert(1)</script>"}`))
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/tickets", `{"customer_query":"click javascript:evil()"}`))
}

func TestInvalidJSONRejected(t *testing.T) {
	app := testApp(Config{})
	assert.Equal(t, fiber.StatusBadRequest, post(t, app, "/chat", `{not json`))
}

func TestGetRequestsSkipValidation(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware(Config{}))
	app.Get("/tickets", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/tickets", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
