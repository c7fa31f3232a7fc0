package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Manav129/RAG-CHATBOT/pkg/logger"
)

// Chat answers render in a web frontend, so inbound text is screened for
// markup injection before it can be echoed back in a response.
var markupPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxQueryLength int
}

// Middleware validates the free-text fields on chat and ticket
// requests. Structural validation (required fields, enums) stays in the
// handlers; this layer only rejects oversized or hostile input.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxQueryLength == 0 {
		cfg.MaxQueryLength = 5000
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		var field string
		switch {
		case strings.HasSuffix(c.Path(), "/chat"):
			field = "query"
		case strings.HasSuffix(c.Path(), "/tickets"):
			field = "customer_query"
		default:
			return c.Next()
		}

		var body map[string]interface{}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid JSON format",
			})
		}

		text, ok := body[field].(string)
		if !ok || strings.TrimSpace(text) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": field + " is required and must be a string",
			})
		}

		if len(text) > cfg.MaxQueryLength {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": field + " exceeds maximum length",
			})
		}

		if markupPattern.MatchString(text) {
			logger.Warn("Rejected request with markup injection",
				zap.String("ip", c.IP()),
				zap.String("path", c.Path()),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid " + field + " content",
			})
		}

		return c.Next()
	}
}
