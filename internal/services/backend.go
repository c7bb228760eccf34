package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/kiakia/loanbot-backend/internal/models"
	"github.com/kiakia/loanbot-backend/internal/utils"
)

// BackendClient is the loan backend API. Every operation has an explicit
// result type so "already exists" and "already paid" are named outcomes
// rather than status codes inferred at call sites. A non-nil error means the
// call itself failed (network, malformed response); backend-reported
// rejections come back inside the result with OK=false.
type BackendClient interface {
	SubmitEmail(email string) (*SubmitEmailResult, error)
	VerifyEmail(email, token string) (*VerifyEmailResult, error)
	SubmitEntry(data *models.ApplicationData) (*SubmitEntryResult, error)
	GetPaymentLink(email string) (*PaymentLinkResult, error)
	UploadPitchVideo(email, mediaID string) (*UploadVideoResult, error)
}

// ExistingProfile is the backend's snapshot of a previously registered
// applicant, returned on an email conflict. The engine routes the user to the
// earliest incomplete step based on these flags.
type ExistingProfile struct {
	EmailVerifiedAt  string `json:"email_verified_at"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Phone            string `json:"phone"`
	BusinessName     string `json:"business_name"`
	BusinessDuration string `json:"business_duration"`
	CACNumber        string `json:"cac_number"`
	AmountInWords    string `json:"amount_in_words"`
	BusinessAddress  string `json:"business_address"`
	Industry         string `json:"industry"`
	Twitter          string `json:"twitter"`
	Instagram        string `json:"instagram"`
	Facebook         string `json:"facebook"`
	LinkedIn         string `json:"linkedin"`
	Referral         string `json:"referral"`
	PaymentReference string `json:"payment_reference"`
	Paid             int    `json:"paid"`
	WhatsAppMediaID  string `json:"whatsapp_media_id"`
}

type SubmitEmailResult struct {
	OK       bool
	Message  string
	Conflict bool
	Existing *ExistingProfile
}

type VerifyEmailResult struct {
	OK      bool
	Message string
}

type SubmitEntryResult struct {
	OK          bool
	AlreadyPaid bool
	Message     string
}

type PaymentLinkResult struct {
	OK      bool
	Link    string
	Message string
}

type UploadVideoResult struct {
	OK      bool
	Message string
}

// HTTPBackendClient talks JSON over HTTPS to the loan backend.
type HTTPBackendClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPBackendClient creates a backend client from the API_BASE_URL
// environment variable.
func NewHTTPBackendClient() *HTTPBackendClient {
	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		log.Println("⚠️  API_BASE_URL not set - backend calls will fail")
	}
	return &HTTPBackendClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// NewBackendClientWithBase creates a backend client against an explicit base
// URL (used by tests).
func NewBackendClientWithBase(baseURL string) *HTTPBackendClient {
	return &HTTPBackendClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// apiEnvelope is the backend's common response shape.
type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *HTTPBackendClient) post(path string, payload interface{}) (int, *apiEnvelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("backend request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read backend response: %w", err)
	}

	envelope := &apiEnvelope{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, envelope); err != nil {
			return resp.StatusCode, nil, fmt.Errorf("malformed backend response: %w", err)
		}
	}
	return resp.StatusCode, envelope, nil
}

func (c *HTTPBackendClient) SubmitEmail(email string) (*SubmitEmailResult, error) {
	code, envelope, err := c.post("/submit-email", map[string]string{"email": email})
	if err != nil {
		return nil, err
	}

	// 409 means the email is already registered; the existing profile rides
	// along under data.
	if code == http.StatusConflict {
		result := &SubmitEmailResult{Conflict: true, Message: envelope.Message}
		if len(envelope.Data) > 0 {
			profile := &ExistingProfile{}
			if err := json.Unmarshal(envelope.Data, profile); err == nil {
				result.Existing = profile
			}
		}
		return result, nil
	}

	return &SubmitEmailResult{OK: envelope.Status, Message: envelope.Message}, nil
}

func (c *HTTPBackendClient) VerifyEmail(email, token string) (*VerifyEmailResult, error) {
	_, envelope, err := c.post("/verify-email", map[string]string{
		"email": email,
		"token": token,
	})
	if err != nil {
		return nil, err
	}
	return &VerifyEmailResult{OK: envelope.Status, Message: envelope.Message}, nil
}

// entryPayload is the submit-entry wire format. The backend expects the
// numeric loan_amount zeroed, the selected bucket label under
// amount_in_words, and the business address duplicated under address.
type entryPayload struct {
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Phone            string `json:"phone"`
	BusinessName     string `json:"business_name"`
	BusinessDuration string `json:"business_duration"`
	CACNumber        string `json:"cac_number"`
	LoanAmount       int    `json:"loan_amount"`
	Address          string `json:"address"`
	AmountInWords    string `json:"amount_in_words"`
	BusinessAddress  string `json:"business_address"`
	Industry         string `json:"industry"`
	Twitter          string `json:"twitter"`
	Instagram        string `json:"instagram"`
	Facebook         string `json:"facebook"`
	LinkedIn         string `json:"linkedin"`
	Referral         string `json:"referral"`
	WhatsAppNumber   string `json:"whatsapp_number"`
}

func (c *HTTPBackendClient) SubmitEntry(data *models.ApplicationData) (*SubmitEntryResult, error) {
	// Normalize before the network call; an invalid phone blocks submission.
	phone, err := utils.NormalizePhone(data.Phone)
	if err != nil {
		return nil, err
	}

	payload := entryPayload{
		Email:            data.Email,
		FirstName:        data.FirstName,
		LastName:         data.LastName,
		Phone:            phone,
		BusinessName:     data.BusinessName,
		BusinessDuration: data.BusinessDuration,
		CACNumber:        data.CACNumber,
		LoanAmount:       0,
		Address:          data.BusinessAddress,
		AmountInWords:    data.LoanAmount,
		BusinessAddress:  data.BusinessAddress,
		Industry:         data.Industry,
		Twitter:          data.Twitter,
		Instagram:        data.Instagram,
		Facebook:         data.Facebook,
		LinkedIn:         data.LinkedIn,
		Referral:         data.Referral,
		WhatsAppNumber:   data.WhatsAppNumber,
	}

	code, envelope, err := c.post("/submit-entry", payload)
	if err != nil {
		return nil, err
	}

	// 201 is the backend's way of saying this entry is already paid for.
	if code == http.StatusCreated {
		return &SubmitEntryResult{AlreadyPaid: true, Message: envelope.Message}, nil
	}

	return &SubmitEntryResult{OK: envelope.Status, Message: envelope.Message}, nil
}

func (c *HTTPBackendClient) GetPaymentLink(email string) (*PaymentLinkResult, error) {
	_, envelope, err := c.post("/initiate-payment-link", map[string]string{"email": email})
	if err != nil {
		return nil, err
	}

	result := &PaymentLinkResult{OK: envelope.Status, Message: envelope.Message}
	if len(envelope.Data) > 0 {
		var data struct {
			PaymentLink string `json:"payment_link"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err == nil {
			result.Link = data.PaymentLink
		}
	}
	if result.Link == "" {
		result.OK = false
	}
	return result, nil
}

func (c *HTTPBackendClient) UploadPitchVideo(email, mediaID string) (*UploadVideoResult, error) {
	_, envelope, err := c.post("/update-video-details", map[string]string{
		"email":             email,
		"submission_type":   "whatsapp",
		"whatsapp_media_id": mediaID,
	})
	if err != nil {
		return nil, err
	}
	return &UploadVideoResult{OK: envelope.Status, Message: envelope.Message}, nil
}
