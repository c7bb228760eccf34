package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/kiakia/loanbot-backend/internal/storage"
)

// AdminHandler exposes the operational session surface. All routes sit
// behind the admin key middleware; clear-sessions especially is destructive
// with no confirmation step.
type AdminHandler struct {
	store storage.Store
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store) *AdminHandler {
	return &AdminHandler{store: store}
}

// GetSessions lists every live session.
func (h *AdminHandler) GetSessions(c *fiber.Ctx) error {
	sessions := h.store.GetAllSessions()
	return c.JSON(fiber.Map{
		"success": true,
		"data":    sessions,
		"total":   len(sessions),
	})
}

// GetSession fetches one session by phone.
func (h *AdminHandler) GetSession(c *fiber.Ctx) error {
	phone := c.Params("phone")

	session, ok := h.store.GetSession(phone)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Session not found",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    session,
	})
}

// DeleteSession removes one session by phone.
func (h *AdminHandler) DeleteSession(c *fiber.Ctx) error {
	phone := c.Params("phone")

	if !h.store.DeleteSession(phone) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Session not found",
		})
	}

	log.Printf("🗑️  Session deleted for %s by admin", phone)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Session deleted successfully",
	})
}

// GetStats returns aggregate session statistics.
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.store.GetStats(),
	})
}

// ClearSessions wipes every session.
func (h *AdminHandler) ClearSessions(c *fiber.Ctx) error {
	h.store.ClearAllSessions()
	log.Println("🗑️  All sessions cleared by admin")
	return c.JSON(fiber.Map{
		"success": true,
		"message": "All sessions cleared successfully",
	})
}
