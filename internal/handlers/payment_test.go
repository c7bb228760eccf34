package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiakia/loanbot-backend/internal/models"
	"github.com/kiakia/loanbot-backend/internal/services"
	"github.com/kiakia/loanbot-backend/internal/storage"
)

// okBackend answers every backend call with a bare success.
type okBackend struct{}

func (okBackend) SubmitEmail(string) (*services.SubmitEmailResult, error) {
	return &services.SubmitEmailResult{OK: true}, nil
}
func (okBackend) VerifyEmail(string, string) (*services.VerifyEmailResult, error) {
	return &services.VerifyEmailResult{OK: true}, nil
}
func (okBackend) SubmitEntry(*models.ApplicationData) (*services.SubmitEntryResult, error) {
	return &services.SubmitEntryResult{OK: true}, nil
}
func (okBackend) GetPaymentLink(string) (*services.PaymentLinkResult, error) {
	return &services.PaymentLinkResult{OK: true, Link: "https://pay.example.com/abc"}, nil
}
func (okBackend) UploadPitchVideo(string, string) (*services.UploadVideoResult, error) {
	return &services.UploadVideoResult{OK: true}, nil
}

// silentMessenger swallows outbound messages.
type silentMessenger struct{}

func (silentMessenger) SendText(string, string) error { return nil }

func (silentMessenger) SendOptionList(string, *services.OptionListMessage) error { return nil }

func newPaymentTestApp() (*fiber.App, storage.Store) {
	store := storage.NewMemoryStore()
	conversation := services.NewConversationService(store, okBackend{}, silentMessenger{})
	reconciler := services.NewPaymentReconciler(store, conversation)
	handler := NewPaymentHandler(store, reconciler)

	app := fiber.New()
	app.Post("/payment/webhook", handler.HandleWebhook)
	app.Post("/payment/confirm", handler.HandleManualConfirm)
	app.Get("/payment/status/:phone", handler.HandlePaymentStatus)
	return app, store
}

func seedPaymentSession(store storage.Store, phone, email string, state models.UserState) {
	session := store.GetOrCreateSession(phone, phone)
	session.State = state
	session.Data.Email = email
	store.UpdateSession(phone, session)
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	decoded := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestPaymentWebhookConfirmsSession(t *testing.T) {
	app, store := newPaymentTestApp()
	seedPaymentSession(store, "2348012345678", "ada@example.com", models.StateAwaitingPayment)

	resp, body := postJSON(t, app, "/payment/webhook", map[string]interface{}{
		"event": "charge.success",
		"data": map[string]interface{}{
			"email":     "ada@example.com",
			"reference": "R1",
			"amount":    5000,
		},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])

	session, ok := store.GetSession("2348012345678")
	require.True(t, ok)
	assert.Equal(t, models.StateAwaitingPitchVideo, session.State)
	assert.Equal(t, "R1", session.Data.PaymentReference)
}

func TestPaymentWebhookNoSessionIsWarning(t *testing.T) {
	app, _ := newPaymentTestApp()

	resp, body := postJSON(t, app, "/payment/webhook", map[string]interface{}{
		"event": "payment.success",
		"data":  map[string]interface{}{"email": "ghost@example.com"},
	})

	// 200 either way; the provider must not retry.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "warning", body["status"])
	assert.Equal(t, "No active payment session found for this user", body["message"])
}

func TestPaymentWebhookUnknownEventAcknowledged(t *testing.T) {
	app, _ := newPaymentTestApp()

	resp, body := postJSON(t, app, "/payment/webhook", map[string]interface{}{
		"event": "transfer.success",
		"data":  map[string]interface{}{"email": "ada@example.com"},
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Webhook received but event type not handled", body["message"])
}

func TestPaymentWebhookRejectsMalformedPayload(t *testing.T) {
	app, _ := newPaymentTestApp()

	resp, _ := postJSON(t, app, "/payment/webhook", map[string]interface{}{
		"data": map[string]interface{}{"email": "ada@example.com"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, app, "/payment/webhook", map[string]interface{}{
		"event": "payment.success",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, app, "/payment/webhook", map[string]interface{}{
		"event": "payment.success",
		"data":  map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestManualConfirmByPhone(t *testing.T) {
	app, store := newPaymentTestApp()
	seedPaymentSession(store, "2348012345678", "ada@example.com", models.StatePaymentPending)

	resp, body := postJSON(t, app, "/payment/confirm", map[string]interface{}{
		"phone": "2348012345678",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	session, _ := store.GetSession("2348012345678")
	assert.Equal(t, models.StateAwaitingPitchVideo, session.State)
	assert.Equal(t, "MANUAL_CONFIRMATION", session.Data.PaymentReference)
}

func TestManualConfirmByEmail(t *testing.T) {
	app, store := newPaymentTestApp()
	seedPaymentSession(store, "2348012345678", "ada@example.com", models.StateAwaitingPayment)

	resp, _ := postJSON(t, app, "/payment/confirm", map[string]interface{}{
		"email":     "ada@example.com",
		"reference": "OPS-REF-7",
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	session, _ := store.GetSession("2348012345678")
	assert.Equal(t, "OPS-REF-7", session.Data.PaymentReference)
}

func TestManualConfirmRequiresPaymentState(t *testing.T) {
	app, store := newPaymentTestApp()
	seedPaymentSession(store, "2348012345678", "ada@example.com", models.StateAwaitingIndustry)

	resp, body := postJSON(t, app, "/payment/confirm", map[string]interface{}{
		"phone": "2348012345678",
	})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "User is not in payment state", body["message"])
}

func TestManualConfirmUnknownUser(t *testing.T) {
	app, _ := newPaymentTestApp()

	resp, _ := postJSON(t, app, "/payment/confirm", map[string]interface{}{
		"phone": "2340000000000",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = postJSON(t, app, "/payment/confirm", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPaymentStatusEndpoint(t *testing.T) {
	app, store := newPaymentTestApp()
	seedPaymentSession(store, "2348012345678", "ada@example.com", models.StatePaymentPending)

	req := httptest.NewRequest(http.MethodGet, "/payment/status/2348012345678", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			State            string `json:"state"`
			PaymentStatus    string `json:"payment_status"`
			IsPaymentPending bool   `json:"is_payment_pending"`
			IsPaid           bool   `json:"is_paid"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "payment_pending", body.Data.State)
	assert.Equal(t, "not_started", body.Data.PaymentStatus)
	assert.True(t, body.Data.IsPaymentPending)
	assert.False(t, body.Data.IsPaid)
}

func TestPaymentStatusUnknownPhone(t *testing.T) {
	app, _ := newPaymentTestApp()

	req := httptest.NewRequest(http.MethodGet, "/payment/status/2340000000000", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
