package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiakia/loanbot-backend/internal/models"
)

func TestSubmitEmailSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/submit-email", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "OTP sent",
		})
	}))
	defer server.Close()

	client := NewBackendClientWithBase(server.URL)
	result, err := client.SubmitEmail("ada@example.com")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.False(t, result.Conflict)
	assert.Equal(t, "OTP sent", result.Message)
}

func TestSubmitEmailConflictCarriesExistingProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Email already registered",
			"data": map[string]interface{}{
				"email_verified_at": "2026-08-01T10:00:00Z",
				"first_name":        "Ada",
				"last_name":         "Obi",
				"business_name":     "Ada Foods",
				"paid":              0,
			},
		})
	}))
	defer server.Close()

	client := NewBackendClientWithBase(server.URL)
	result, err := client.SubmitEmail("ada@example.com")
	require.NoError(t, err)
	assert.True(t, result.Conflict)
	require.NotNil(t, result.Existing)
	assert.Equal(t, "Ada", result.Existing.FirstName)
	assert.Equal(t, 0, result.Existing.Paid)
	assert.NotEmpty(t, result.Existing.EmailVerifiedAt)
}

func TestVerifyEmailRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Invalid OTP",
		})
	}))
	defer server.Close()

	client := NewBackendClientWithBase(server.URL)
	result, err := client.VerifyEmail("ada@example.com", "000000")
	require.NoError(t, err)
	assert.False(t, result.OK)
	assert.Equal(t, "Invalid OTP", result.Message)
}

func TestSubmitEntryNormalizesPhoneOnTheWire(t *testing.T) {
	var wire map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&wire))
		json.NewEncoder(w).Encode(map[string]interface{}{"status": true})
	}))
	defer server.Close()

	client := NewBackendClientWithBase(server.URL)
	result, err := client.SubmitEntry(&models.ApplicationData{
		Email:           "ada@example.com",
		Phone:           "+2348012345678",
		LoanAmount:      "₦50,000 - ₦100,000",
		BusinessAddress: "12 Broad Street, Lagos",
	})
	require.NoError(t, err)
	assert.True(t, result.OK)

	assert.Equal(t, "08012345678", wire["phone"])
	assert.Equal(t, float64(0), wire["loan_amount"])
	assert.Equal(t, "₦50,000 - ₦100,000", wire["amount_in_words"])
	assert.Equal(t, "12 Broad Street, Lagos", wire["address"])
	assert.Equal(t, "12 Broad Street, Lagos", wire["business_address"])
}

func TestSubmitEntryBlocksInvalidPhoneBeforeNetwork(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewBackendClientWithBase(server.URL)
	_, err := client.SubmitEntry(&models.ApplicationData{Phone: "+15550100"})
	assert.Error(t, err)
	assert.False(t, called, "invalid phone must never reach the backend")
}

func TestSubmitEntryAlreadyPaid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Entry already paid",
		})
	}))
	defer server.Close()

	client := NewBackendClientWithBase(server.URL)
	result, err := client.SubmitEntry(&models.ApplicationData{Phone: "08012345678"})
	require.NoError(t, err)
	assert.True(t, result.AlreadyPaid)
}

func TestGetPaymentLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/initiate-payment-link", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": true,
			"data":   map[string]string{"payment_link": "https://pay.example.com/abc"},
		})
	}))
	defer server.Close()

	client := NewBackendClientWithBase(server.URL)
	result, err := client.GetPaymentLink("ada@example.com")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, "https://pay.example.com/abc", result.Link)
}

func TestGetPaymentLinkMissingLinkIsNotOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": true})
	}))
	defer server.Close()

	client := NewBackendClientWithBase(server.URL)
	result, err := client.GetPaymentLink("ada@example.com")
	require.NoError(t, err)
	assert.False(t, result.OK)
}

func TestUploadPitchVideoPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/update-video-details", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "whatsapp", body["submission_type"])
		assert.Equal(t, "MEDIA123", body["whatsapp_media_id"])

		json.NewEncoder(w).Encode(map[string]interface{}{"status": true})
	}))
	defer server.Close()

	client := NewBackendClientWithBase(server.URL)
	result, err := client.UploadPitchVideo("ada@example.com", "MEDIA123")
	require.NoError(t, err)
	assert.True(t, result.OK)
}
