package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

var startTime = time.Now()

// HealthCheck reports service liveness for monitoring.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	})
}
