package services

import (
	"log"

	"github.com/kiakia/loanbot-backend/internal/models"
	"github.com/kiakia/loanbot-backend/internal/storage"
)

// ReconcileOutcome is what happened to a payment provider event. The provider
// always gets an acknowledgment; these outcomes only decide the response body
// and what we log.
type ReconcileOutcome string

const (
	ReconcileProcessed ReconcileOutcome = "processed"
	ReconcileNoSession ReconcileOutcome = "no_session"
	ReconcileIgnored   ReconcileOutcome = "ignored"
)

// PaymentReconciler drives the payment-confirmed transition from the payment
// provider's webhook, independent of the chat transport. It is the second
// trigger of the same transition the user can cause by sending a reference,
// so it reuses the conversation engine's per-user locks and apply step.
type PaymentReconciler struct {
	store        storage.Store
	conversation *ConversationService
}

// NewPaymentReconciler creates a reconciler sharing the engine's session
// serialization.
func NewPaymentReconciler(store storage.Store, conversation *ConversationService) *PaymentReconciler {
	return &PaymentReconciler{
		store:        store,
		conversation: conversation,
	}
}

// HandleEvent reconciles one provider event with the live sessions. A miss is
// a logged no-op, never an error: the provider should not retry for a session
// that legitimately does not exist.
func (r *PaymentReconciler) HandleEvent(event *models.PaymentEvent) ReconcileOutcome {
	if event == nil || event.Kind == models.PaymentEventUnknown {
		return ReconcileIgnored
	}
	if event.Email == "" {
		log.Println("⚠️  Payment event without email ignored")
		return ReconcileIgnored
	}

	phone := r.findSessionPhone(event)
	if phone == "" {
		log.Printf("⚠️  No active payment session found for email: %s", event.Email)
		return ReconcileNoSession
	}

	unlock := r.conversation.locks.Lock(phone)
	defer unlock()

	// Re-fetch under the lock; the session may have moved since the scan.
	session, ok := r.store.GetSession(phone)
	if !ok || session.Data.Email != event.Email || !session.State.IsPaymentState() {
		log.Printf("⚠️  Payment session for %s changed before reconciliation", event.Email)
		return ReconcileNoSession
	}

	switch event.Kind {
	case models.PaymentEventSuccess:
		session.Data.PaymentReference = event.Reference
		if event.Amount > 0 {
			session.Data.PaymentAmount = event.Amount
		}
		r.conversation.apply(phone, r.conversation.confirmPayment(session))
		log.Printf("✅ Payment confirmed for user: %s", event.Email)

	case models.PaymentEventFailed:
		session.Data.PaymentReference = event.Reference
		r.conversation.apply(phone, r.conversation.failPayment(session))
		log.Printf("❌ Payment failed for user: %s", event.Email)

	case models.PaymentEventPending:
		// Only meaningful while the user hasn't already entered the pending
		// sub-state themselves.
		if session.State == models.StateAwaitingPayment {
			session.Data.PaymentReference = event.Reference
			session.Data.PaymentStatus = models.PaymentStatusPending
			session.State = models.StatePaymentPending
			r.conversation.apply(phone, persist(session, reply(paymentProcessingMessage())))
		}
		log.Printf("⏳ Payment pending for user: %s", event.Email)
	}

	return ReconcileProcessed
}

// findSessionPhone locates the session the event belongs to: primary lookup
// by email over sessions still in a payment state, secondary lookup by phone.
// The phone fallback re-verifies the email so a payment is never confirmed
// against a session whose email disagrees with the event.
func (r *PaymentReconciler) findSessionPhone(event *models.PaymentEvent) string {
	for _, session := range r.store.GetAllSessions() {
		if session.Data.Email == event.Email && session.State.IsPaymentState() {
			return session.Phone
		}
	}

	if event.Phone != "" {
		if session, ok := r.store.GetSession(event.Phone); ok {
			if session.Data.Email == event.Email && session.State.IsPaymentState() {
				return session.Phone
			}
		}
	}
	return ""
}
