package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/kiakia/loanbot-backend/internal/models"
	"github.com/kiakia/loanbot-backend/internal/services"
)

// WhatsAppHandler turns transport webhooks into normalized inbound messages
// for the conversation engine.
type WhatsAppHandler struct {
	conversation *services.ConversationService
}

// NewWhatsAppHandler creates a new WhatsApp webhook handler
func NewWhatsAppHandler(conversation *services.ConversationService) *WhatsAppHandler {
	return &WhatsAppHandler{conversation: conversation}
}

// TwilioWebhookPayload represents an incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid        string `form:"MessageSid"`
	AccountSid        string `form:"AccountSid"`
	From              string `form:"From"` // WhatsApp number (whatsapp:+2348012345678)
	To                string `form:"To"`
	Body              string `form:"Body"`
	ProfileName       string `form:"ProfileName"`
	WaId              string `form:"WaId"`
	NumMedia          string `form:"NumMedia"`
	MediaUrl0         string `form:"MediaUrl0"`
	MediaContentType0 string `form:"MediaContentType0"`
	ButtonPayload     string `form:"ButtonPayload"`
	ButtonText        string `form:"ButtonText"`
	ListId            string `form:"ListId"`
	ListTitle         string `form:"ListTitle"`
}

// normalizeInbound maps the Twilio form payload onto the engine's inbound
// message shape.
func normalizeInbound(payload *TwilioWebhookPayload) *models.InboundMessage {
	msg := &models.InboundMessage{
		From:           strings.TrimPrefix(payload.From, "whatsapp:"),
		ProfileName:    payload.ProfileName,
		WhatsAppNumber: payload.WaId,
		Kind:           models.MessageKindText,
		Text:           payload.Body,
	}

	switch {
	case payload.ListId != "":
		msg.Kind = models.MessageKindInteractive
		msg.Selection = &models.InteractiveSelection{ID: payload.ListId, Title: payload.ListTitle}
	case payload.ButtonPayload != "":
		msg.Kind = models.MessageKindInteractive
		msg.Selection = &models.InteractiveSelection{ID: payload.ButtonPayload, Title: payload.ButtonText}
	case payload.NumMedia != "" && payload.NumMedia != "0":
		msg.MediaID = payload.MediaUrl0
		switch {
		case strings.HasPrefix(payload.MediaContentType0, "video/"):
			msg.Kind = models.MessageKindVideo
		case strings.HasPrefix(payload.MediaContentType0, "image/"):
			msg.Kind = models.MessageKindImage
		case strings.HasPrefix(payload.MediaContentType0, "audio/"):
			msg.Kind = models.MessageKindAudio
		case payload.MediaContentType0 != "":
			msg.Kind = models.MessageKindDocument
		default:
			msg.Kind = models.MessageKindOther
		}
	}
	return msg
}

// HandleWebhook processes incoming WhatsApp messages. The webhook is
// acknowledged immediately; each event is handled as its own goroutine so a
// slow backend call for one user never blocks other users' messages.
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Printf("Error parsing webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	if payload.From == "" {
		// Status callback or other non-message event; nothing to do.
		return c.SendStatus(fiber.StatusOK)
	}

	msg := normalizeInbound(&payload)
	log.Printf("📱 WhatsApp message from %s (%s): %s", msg.From, msg.Kind, msg.Text)

	go h.conversation.ProcessMessage(msg)

	return c.SendStatus(fiber.StatusOK)
}

// TestWebhookPayload lets development poke the engine without Twilio.
type TestWebhookPayload struct {
	From    string `json:"from"`
	Name    string `json:"name"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
	MediaID string `json:"media_id"`
}

// HandleTestWebhook processes test messages (for development)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	kind := models.MessageKind(payload.Kind)
	if kind == "" {
		kind = models.MessageKindText
	}

	log.Printf("🧪 Test webhook from %s: %s", payload.From, payload.Message)

	h.conversation.ProcessMessage(&models.InboundMessage{
		From:        payload.From,
		ProfileName: payload.Name,
		Kind:        kind,
		Text:        payload.Message,
		MediaID:     payload.MediaID,
	})

	return c.JSON(fiber.Map{"success": true})
}
