package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/kiakia/loanbot-backend/internal/models"
	"github.com/kiakia/loanbot-backend/internal/services"
	"github.com/kiakia/loanbot-backend/internal/storage"
)

// PaymentHandler receives payment provider webhooks and exposes the manual
// confirmation and status endpoints.
type PaymentHandler struct {
	store      storage.Store
	reconciler *services.PaymentReconciler
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(store storage.Store, reconciler *services.PaymentReconciler) *PaymentHandler {
	return &PaymentHandler{
		store:      store,
		reconciler: reconciler,
	}
}

// paymentWebhookPayload is the provider's delivery shape.
type paymentWebhookPayload struct {
	Event string `json:"event"`
	Data  *struct {
		Email     string  `json:"email"`
		Phone     string  `json:"phone"`
		Reference string  `json:"reference"`
		Amount    float64 `json:"amount"`
	} `json:"data"`
}

// HandleWebhook processes payment provider events. Every recognized delivery
// is acknowledged with 200 so the provider does not retry for sessions that
// legitimately do not exist.
func (h *PaymentHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload paymentWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid webhook payload",
		})
	}

	if payload.Event == "" || payload.Data == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid webhook payload",
		})
	}

	kind := models.ParsePaymentEventKind(payload.Event)
	log.Printf("💳 Payment webhook: %s for %s", payload.Event, payload.Data.Email)

	if kind == models.PaymentEventUnknown {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Webhook received but event type not handled",
		})
	}

	if payload.Data.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Email is required in webhook data",
		})
	}

	outcome := h.reconciler.HandleEvent(&models.PaymentEvent{
		Kind:      kind,
		Email:     payload.Data.Email,
		Phone:     payload.Data.Phone,
		Reference: payload.Data.Reference,
		Amount:    payload.Data.Amount,
	})

	if outcome == services.ReconcileNoSession {
		return c.JSON(fiber.Map{
			"status":  "warning",
			"message": "No active payment session found for this user",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Payment event processed",
	})
}

// HandleManualConfirm lets an operator force-confirm a payment for a session
// stuck in a payment state.
func (h *PaymentHandler) HandleManualConfirm(c *fiber.Ctx) error {
	var req struct {
		Phone     string `json:"phone"`
		Email     string `json:"email"`
		Reference string `json:"reference"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	if req.Phone == "" && req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Phone number or email is required",
		})
	}

	var session *models.Session
	if req.Phone != "" {
		if found, ok := h.store.GetSession(req.Phone); ok {
			session = found
		}
	} else {
		for _, candidate := range h.store.GetAllSessions() {
			if candidate.Data.Email == req.Email {
				session = candidate
				break
			}
		}
	}

	if session == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User session not found",
		})
	}

	if !session.State.IsPaymentState() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success":       false,
			"message":       "User is not in payment state",
			"current_state": session.State,
		})
	}

	reference := req.Reference
	if reference == "" {
		reference = "MANUAL_CONFIRMATION"
	}

	outcome := h.reconciler.HandleEvent(&models.PaymentEvent{
		Kind:      models.PaymentEventSuccess,
		Email:     session.Data.Email,
		Phone:     session.Phone,
		Reference: reference,
	})
	if outcome != services.ReconcileProcessed {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "Could not confirm payment",
		})
	}

	log.Printf("✅ Payment confirmed manually for %s", session.Phone)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment confirmed manually",
	})
}

// HandlePaymentStatus reports the payment view of one session.
func (h *PaymentHandler) HandlePaymentStatus(c *fiber.Ctx) error {
	phone := c.Params("phone")

	session, ok := h.store.GetSession(phone)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "User session not found",
		})
	}

	status := session.Data.PaymentStatus
	if status == "" {
		status = "not_started"
	}

	isPaid := session.Data.PaymentStatus == models.PaymentStatusConfirmed ||
		session.State == models.StateAwaitingPitchVideo ||
		session.State == models.StateCompleted

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"phone":              phone,
			"email":              session.Data.Email,
			"state":              session.State,
			"payment_status":     status,
			"payment_reference":  session.Data.PaymentReference,
			"payment_amount":     session.Data.PaymentAmount,
			"is_payment_pending": session.State == models.StatePaymentPending,
			"is_paid":            isPaid,
		},
	})
}
