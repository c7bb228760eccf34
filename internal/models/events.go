package models

// MessageKind classifies an inbound WhatsApp message after normalization.
type MessageKind string

const (
	MessageKindText        MessageKind = "text"
	MessageKindInteractive MessageKind = "interactive"
	MessageKindVideo       MessageKind = "video"
	MessageKindDocument    MessageKind = "document"
	MessageKindImage       MessageKind = "image"
	MessageKindAudio       MessageKind = "audio"
	MessageKindOther       MessageKind = "other"
)

// InteractiveSelection is the user's pick from a list or button message.
type InteractiveSelection struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// InboundMessage is the normalized shape every transport webhook is parsed
// into before it reaches the conversation engine.
type InboundMessage struct {
	From           string                `json:"from"`
	ProfileName    string                `json:"profile_name"`
	WhatsAppNumber string                `json:"whatsapp_number"`
	Kind           MessageKind           `json:"kind"`
	Text           string                `json:"text,omitempty"`
	Selection      *InteractiveSelection `json:"selection,omitempty"`
	MediaID        string                `json:"media_id,omitempty"`
}

// PaymentEventKind is the normalized payment provider event type.
type PaymentEventKind string

const (
	PaymentEventSuccess PaymentEventKind = "success"
	PaymentEventFailed  PaymentEventKind = "failed"
	PaymentEventPending PaymentEventKind = "pending"
	PaymentEventUnknown PaymentEventKind = "unknown"
)

// ParsePaymentEventKind maps the provider's event names onto the kinds this
// system consumes. Anything else is acknowledged but ignored.
func ParsePaymentEventKind(event string) PaymentEventKind {
	switch event {
	case "payment.success", "charge.success":
		return PaymentEventSuccess
	case "payment.failed", "charge.failed":
		return PaymentEventFailed
	case "payment.pending", "charge.pending":
		return PaymentEventPending
	default:
		return PaymentEventUnknown
	}
}

// PaymentEvent is one payment provider webhook delivery after parsing.
type PaymentEvent struct {
	Kind      PaymentEventKind `json:"kind"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone,omitempty"`
	Reference string           `json:"reference"`
	Amount    float64          `json:"amount,omitempty"`
}
