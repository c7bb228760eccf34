package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiakia/loanbot-backend/internal/models"
)

func TestNormalizeInboundText(t *testing.T) {
	msg := normalizeInbound(&TwilioWebhookPayload{
		From:        "whatsapp:+2348012345678",
		Body:        "hello",
		ProfileName: "Ada",
		WaId:        "2348012345678",
	})

	assert.Equal(t, "+2348012345678", msg.From)
	assert.Equal(t, models.MessageKindText, msg.Kind)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, "Ada", msg.ProfileName)
	assert.Equal(t, "2348012345678", msg.WhatsAppNumber)
}

func TestNormalizeInboundListReply(t *testing.T) {
	msg := normalizeInbound(&TwilioWebhookPayload{
		From:      "whatsapp:+2348012345678",
		ListId:    "1_2_years",
		ListTitle: "1 - 2 years",
	})

	assert.Equal(t, models.MessageKindInteractive, msg.Kind)
	require.NotNil(t, msg.Selection)
	assert.Equal(t, "1_2_years", msg.Selection.ID)
	assert.Equal(t, "1 - 2 years", msg.Selection.Title)
}

func TestNormalizeInboundButtonReply(t *testing.T) {
	msg := normalizeInbound(&TwilioWebhookPayload{
		From:          "whatsapp:+2348012345678",
		ButtonPayload: "agriculture",
		ButtonText:    "Agriculture & Farming",
	})

	assert.Equal(t, models.MessageKindInteractive, msg.Kind)
	require.NotNil(t, msg.Selection)
	assert.Equal(t, "agriculture", msg.Selection.ID)
}

func TestNormalizeInboundMedia(t *testing.T) {
	video := normalizeInbound(&TwilioWebhookPayload{
		From:              "whatsapp:+2348012345678",
		NumMedia:          "1",
		MediaUrl0:         "https://api.twilio.com/media/ME123",
		MediaContentType0: "video/mp4",
	})
	assert.Equal(t, models.MessageKindVideo, video.Kind)
	assert.Equal(t, "https://api.twilio.com/media/ME123", video.MediaID)

	image := normalizeInbound(&TwilioWebhookPayload{
		From:              "whatsapp:+2348012345678",
		NumMedia:          "1",
		MediaContentType0: "image/jpeg",
	})
	assert.Equal(t, models.MessageKindImage, image.Kind)

	document := normalizeInbound(&TwilioWebhookPayload{
		From:              "whatsapp:+2348012345678",
		NumMedia:          "1",
		MediaContentType0: "application/pdf",
	})
	assert.Equal(t, models.MessageKindDocument, document.Kind)
}

func TestNormalizeInboundNoMediaStaysText(t *testing.T) {
	msg := normalizeInbound(&TwilioWebhookPayload{
		From:     "whatsapp:+2348012345678",
		Body:     "just text",
		NumMedia: "0",
	})
	assert.Equal(t, models.MessageKindText, msg.Kind)
	assert.Empty(t, msg.MediaID)
}
