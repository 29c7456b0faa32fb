package middleware

import (
	"mime"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// JSONConfig configures RequireJSON.
type JSONConfig struct {
	// Next skips the check when it returns true.
	Next func(c *fiber.Ctx) bool
}

// RequireJSON is a Fiber middleware that rejects requests whose Content-Type
// is not application/json with 415 Unsupported Media Type.
func RequireJSON(config ...JSONConfig) fiber.Handler {
	var cfg JSONConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		contentType := c.Get(fiber.HeaderContentType)
		if contentType == "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"message": "Unsupported media type",
				"error":   "Content-Type header is required",
			})
		}

		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || !strings.EqualFold(mediaType, fiber.MIMEApplicationJSON) {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"message": "Unsupported media type",
				"error":   "Content-Type must be " + fiber.MIMEApplicationJSON,
			})
		}

		return c.Next()
	}
}
