package middleware

import (
	"crypto/subtle"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
)

// RequireAdminKey gates the admin surface behind the ADMIN_API_KEY
// environment variable. Clear-sessions in particular is destructive, so a
// missing key configuration locks the surface rather than opening it.
func RequireAdminKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminKey := os.Getenv("ADMIN_API_KEY")
		if adminKey == "" {
			log.Println("ERROR: ADMIN_API_KEY not set - admin routes disabled")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Admin surface not configured",
			})
		}

		provided := c.Get("X-Admin-Key")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(adminKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid admin key",
			})
		}

		return c.Next()
	}
}
