package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentStatus tracks the payment provider's verdict for an application fee.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// ApplicationData holds every answer collected during the questionnaire.
// String fields start empty and only ever move from empty to non-empty within
// one application cycle; cancel/restart recreates the whole session.
// Field names match the backend API payloads.
type ApplicationData struct {
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Phone            string `json:"phone"`
	BusinessName     string `json:"business_name"`
	BusinessDuration string `json:"business_duration"`
	CACNumber        string `json:"cac_number"`
	LoanAmount       string `json:"loan_amount"`
	BusinessAddress  string `json:"business_address"`
	Industry         string `json:"industry"`
	Twitter          string `json:"twitter"`
	Instagram        string `json:"instagram"`
	Facebook         string `json:"facebook"`
	LinkedIn         string `json:"linkedin"`
	Referral         string `json:"referral"`
	WhatsAppNumber   string `json:"whatsapp_number"`
	PaymentReference string `json:"payment_reference"`

	PaymentAmount      float64       `json:"payment_amount,omitempty"`
	PaymentStatus      PaymentStatus `json:"payment_status,omitempty"`
	PaymentConfirmedAt string        `json:"payment_confirmed_at,omitempty"`
}

// progressFields enumerates the always-present answer fields counted by the
// 'status' command.
func (d *ApplicationData) progressFields() []string {
	return []string{
		d.Email, d.FirstName, d.LastName, d.Phone,
		d.BusinessName, d.BusinessDuration, d.CACNumber, d.LoanAmount,
		d.BusinessAddress, d.Industry,
		d.Twitter, d.Instagram, d.Facebook, d.LinkedIn,
		d.Referral, d.WhatsAppNumber, d.PaymentReference,
	}
}

// Progress returns how many answer fields are filled and how many exist.
func (d *ApplicationData) Progress() (filled, total int) {
	fields := d.progressFields()
	for _, v := range fields {
		if v != "" {
			filled++
		}
	}
	return filled, len(fields)
}

// Session is one user's conversation with the bot, keyed by their WhatsApp
// phone number. The store owns all sessions; the engine borrows one per
// inbound event and writes mutations back through UpdateSession.
type Session struct {
	SessionID    string          `json:"session_id"`
	Phone        string          `json:"phone"`
	State        UserState       `json:"state"`
	Data         ApplicationData `json:"data"`
	Step         int             `json:"step"`
	CreatedAt    time.Time       `json:"created_at"`
	LastActivity time.Time       `json:"last_activity"`
}

// Clone returns an independent copy so callers never share the stored value.
func (s *Session) Clone() *Session {
	copied := *s
	return &copied
}

// SessionRecord is the persisted form of a Session for the database store.
// Collected answers are serialized into the Data column as JSON.
type SessionRecord struct {
	gorm.Model
	SessionID    string    `json:"session_id"`
	Phone        string    `json:"phone" gorm:"uniqueIndex"`
	State        string    `json:"state"`
	Data         string    `json:"data"`
	Step         int       `json:"step"`
	LastActivity time.Time `json:"last_activity"`
}
