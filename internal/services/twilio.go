package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Messenger is the outbound side of the chat transport. The conversation
// engine only ever talks to this interface; tests plug in a fake.
type Messenger interface {
	SendText(to, body string) error
	SendOptionList(to string, list *OptionListMessage) error
}

// TwilioService sends WhatsApp messages via Twilio.
type TwilioService struct {
	client       *twilio.RestClient
	whatsappFrom string
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService() (*TwilioService, error) {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_WHATSAPP_FROM") // Format: "whatsapp:+14155238886"

	if accountSid == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("missing Twilio credentials in environment variables")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &TwilioService{
		client:       client,
		whatsappFrom: from,
	}, nil
}

// SendText sends a plain WhatsApp text message.
func (t *TwilioService) SendText(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.whatsappFrom)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetBody(body)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send WhatsApp message: %v", err)
		return err
	}

	log.Printf("✅ WhatsApp message sent! SID: %s", *resp.Sid)
	return nil
}

// SendOptionList sends an interactive list prompt. When a content template
// SID is configured for the list it goes out as a real WhatsApp list;
// otherwise the text fallback is sent and the user replies with the option id.
func (t *TwilioService) SendOptionList(to string, list *OptionListMessage) error {
	contentSID := os.Getenv(list.ContentSIDVar)
	if contentSID == "" {
		return t.SendText(to, list.TextFallback())
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.whatsappFrom)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetContentSid(contentSID)

	// Content variables let the registered template echo the prompt copy.
	variables := map[string]string{
		"header": list.Header,
		"body":   list.Body,
		"footer": list.Footer,
		"button": list.ButtonText,
	}
	variablesJSON, err := json.Marshal(variables)
	if err != nil {
		return fmt.Errorf("failed to marshal content variables: %w", err)
	}
	params.SetContentVariables(string(variablesJSON))

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		log.Printf("❌ Failed to send interactive list: %v", err)
		return err
	}

	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, *resp.ErrorMessage)
	}

	log.Printf("✅ Interactive list sent to %s, SID: %s", to, *resp.Sid)
	return nil
}

// LogMessenger logs outbound messages instead of sending them. Used when
// Twilio credentials are absent so the bot still works against the test
// webhook in development.
type LogMessenger struct{}

func (LogMessenger) SendText(to, body string) error {
	log.Printf("📤 [dry-run] to %s: %s", to, body)
	return nil
}

func (LogMessenger) SendOptionList(to string, list *OptionListMessage) error {
	log.Printf("📤 [dry-run] to %s: %s", to, list.Header)
	return nil
}
