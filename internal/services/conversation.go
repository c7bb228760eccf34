package services

import (
	"log"
	"strings"
	"time"

	"github.com/kiakia/loanbot-backend/internal/models"
	"github.com/kiakia/loanbot-backend/internal/storage"
	"github.com/kiakia/loanbot-backend/internal/utils"
)

// ConversationService is the state machine driving the loan-application
// questionnaire. Each inbound event borrows the user's session from the
// store, decides a transition, and hands the outcome to a single apply step
// that persists the session and dispatches the outbound messages.
type ConversationService struct {
	store     storage.Store
	backend   BackendClient
	messenger Messenger
	locks     *keyedMutex
}

// NewConversationService creates the conversation engine.
func NewConversationService(store storage.Store, backend BackendClient, messenger Messenger) *ConversationService {
	return &ConversationService{
		store:     store,
		backend:   backend,
		messenger: messenger,
		locks:     newKeyedMutex(),
	}
}

// outbound is one message queued for the user by a transition handler.
type outbound struct {
	text string
	list *OptionListMessage
}

func reply(text string) outbound {
	return outbound{text: text}
}

func replyList(list *OptionListMessage) outbound {
	return outbound{list: list}
}

// action says what the apply step should do with the session.
type action int

const (
	actionNone action = iota
	actionPersist
	actionDelete
)

// stepResult is a transition handler's decision: the session to persist (if
// any) and the messages to send. Handlers never write to the store directly.
type stepResult struct {
	action  action
	session *models.Session
	replies []outbound
}

func stay(replies ...outbound) *stepResult {
	return &stepResult{action: actionNone, replies: replies}
}

func persist(session *models.Session, replies ...outbound) *stepResult {
	return &stepResult{action: actionPersist, session: session, replies: replies}
}

func drop(replies ...outbound) *stepResult {
	return &stepResult{action: actionDelete, replies: replies}
}

// apply persists the decision and then dispatches the queued messages.
// Persisting first keeps session state atomic relative to the decision; a
// send failure never leaves the state machine behind the conversation.
func (s *ConversationService) apply(phone string, res *stepResult) {
	if res == nil {
		return
	}

	switch res.action {
	case actionPersist:
		if _, ok := s.store.UpdateSession(phone, res.session); !ok {
			// Session vanished between borrow and write-back. The update is
			// lost; the next inbound message recreates the session.
			log.Printf("⚠️  Lost update for %s: session vanished", phone)
		}
	case actionDelete:
		s.store.DeleteSession(phone)
	}

	for _, msg := range res.replies {
		var err error
		if msg.list != nil {
			err = s.messenger.SendOptionList(phone, msg.list)
		} else {
			err = s.messenger.SendText(phone, msg.text)
		}
		if err != nil {
			log.Printf("❌ Failed to send message to %s: %v", phone, err)
		}
	}
}

// ProcessMessage handles one normalized inbound event. Events for the same
// user are serialized; events for different users run independently.
func (s *ConversationService) ProcessMessage(msg *models.InboundMessage) {
	if msg == nil || msg.From == "" {
		return
	}

	unlock := s.locks.Lock(msg.From)
	defer unlock()

	session := s.store.GetOrCreateSession(msg.From, msg.WhatsAppNumber)

	text := strings.TrimSpace(msg.Text)
	lower := strings.ToLower(text)

	var res *stepResult
	switch {
	case msg.Kind == models.MessageKindInteractive && msg.Selection != nil:
		res = s.handleSelection(session, msg.Selection)
	default:
		if cmd, handled := s.handleGlobalCommand(session, lower, msg.ProfileName); handled {
			res = cmd
		} else {
			res = s.dispatchState(session, msg, text, lower)
		}
	}

	s.apply(msg.From, res)
}

// dispatchState routes a non-command message to the handler for the
// session's current state. Every state has a case; an unknown state is a bug
// we log rather than a silent default path.
func (s *ConversationService) dispatchState(session *models.Session, msg *models.InboundMessage, text, lower string) *stepResult {
	switch session.State {
	case models.StateInitial:
		return s.handleInitial(session, lower, msg.ProfileName)
	case models.StateAwaitingEmail:
		return s.handleEmail(session, text)
	case models.StateAwaitingOTP:
		return s.handleOTP(session, text)
	case models.StateAwaitingFirstName:
		return s.handleFirstName(session, text)
	case models.StateAwaitingLastName:
		return s.handleLastName(session, text)
	case models.StateAwaitingPhone:
		return s.handlePhone(session, text)
	case models.StateAwaitingBusinessName:
		return s.handleBusinessName(session, text)
	case models.StateAwaitingBusinessDuration:
		return s.handleBusinessDurationText(session, text)
	case models.StateAwaitingCACNumber:
		return s.handleCACNumber(session, text, lower)
	case models.StateAwaitingLoanAmount:
		return s.handleLoanAmountText(session, text)
	case models.StateAwaitingBusinessAddress:
		return s.handleBusinessAddress(session, text)
	case models.StateAwaitingIndustry:
		return s.handleIndustryText(session, text)
	case models.StateAwaitingSocialMedia:
		return s.handleSocialMedia(session, text, lower)
	case models.StateAwaitingReferral:
		return s.handleReferral(session, text, lower)
	case models.StateAwaitingPayment:
		return s.handlePayment(session, text, lower)
	case models.StatePaymentPending:
		return s.handlePaymentPending(session, text, lower)
	case models.StateAwaitingPitchVideo:
		return s.handlePitchVideo(session, msg)
	case models.StateCompleted:
		return stay(reply(alreadySubmittedMessage()))
	default:
		log.Printf("⚠️  Session %s in unknown state %q", session.Phone, session.State)
		return stay(reply("I didn't understand that. Type 'start' to begin a new application."))
	}
}

// handleGlobalCommand short-circuits state handling for the commands that
// work everywhere. Matching is exact on the full trimmed, lowercased body.
func (s *ConversationService) handleGlobalCommand(session *models.Session, lower, name string) (*stepResult, bool) {
	switch lower {
	case "cancel", "stop", "quit", "exit":
		return drop(reply(cancellationMessage())), true

	case "restart", "reset":
		// Recreate and skip the greeting straight to the email question.
		s.store.DeleteSession(session.Phone)
		fresh := s.store.CreateSession(session.Phone, session.Data.WhatsAppNumber)
		fresh.State = models.StateAwaitingEmail
		return persist(fresh, reply(welcomeMessage(name))), true

	case "help", "menu":
		return stay(reply(helpMessage())), true

	case "status":
		filled, total := session.Data.Progress()
		return stay(reply(statusMessage(session.State, filled, total))), true
	}
	return nil, false
}

// handleSelection processes an interactive list/button reply. Selections are
// only meaningful in the three fixed-choice states.
func (s *ConversationService) handleSelection(session *models.Session, sel *models.InteractiveSelection) *stepResult {
	switch session.State {
	case models.StateAwaitingBusinessDuration:
		if title, ok := BusinessDurationTitle(sel.ID); ok {
			return s.advanceBusinessDuration(session, title)
		}
	case models.StateAwaitingLoanAmount:
		if title, ok := LoanAmountTitle(sel.ID); ok {
			return s.advanceLoanAmount(session, title)
		}
	case models.StateAwaitingIndustry:
		if title, ok := IndustryTitle(sel.ID); ok {
			return s.advanceIndustry(session, title)
		}
	default:
		return stay(reply("I didn't expect that selection right now. Please continue with your application."))
	}
	// Valid state, unknown id: re-present the choices.
	return s.representChoices(session)
}

func (s *ConversationService) representChoices(session *models.Session) *stepResult {
	switch session.State {
	case models.StateAwaitingBusinessDuration:
		return stay(replyList(NewBusinessDurationListMessage()))
	case models.StateAwaitingLoanAmount:
		return stay(replyList(NewLoanAmountListMessage()))
	case models.StateAwaitingIndustry:
		return stay(replyList(NewIndustryListMessage()))
	}
	return stay()
}

func (s *ConversationService) handleInitial(session *models.Session, lower, name string) *stepResult {
	if lower == "hello" || lower == "hi" || lower == "start" {
		session.State = models.StateAwaitingEmail
		return persist(session, reply(welcomeMessage(name)))
	}
	return stay(reply(greetingMessage(name)))
}

func (s *ConversationService) handleEmail(session *models.Session, text string) *stepResult {
	if !utils.IsValidEmail(text) {
		return stay(reply("❌ Please enter a valid email address (e.g., john@example.com):"))
	}

	result, err := s.backend.SubmitEmail(text)
	if err != nil {
		log.Printf("❌ Email submission failed for %s: %v", session.Phone, err)
		return stay(reply(genericErrorMessage()))
	}

	if result.Conflict {
		if result.Existing == nil {
			return stay(reply("❌ Could not retrieve your existing data. Please contact support."))
		}
		session.Data.Email = text
		return s.routeExistingProfile(session, result.Existing)
	}

	if !result.OK {
		msg := result.Message
		if msg == "" {
			msg = "❌ Something went wrong. Please try again later."
		}
		return stay(reply(msg))
	}

	session.Data.Email = text
	session.State = models.StateAwaitingOTP
	return persist(session, reply(otpPromptMessage(text)))
}

// routeExistingProfile sends a returning user to the earliest incomplete
// step. Every flag combination maps to exactly one target state; the
// trailing first-name fallback is defensive, not a success path.
func (s *ConversationService) routeExistingProfile(session *models.Session, existing *ExistingProfile) *stepResult {
	// Unverified email: resend straight into OTP entry.
	if existing.EmailVerifiedAt == "" {
		session.State = models.StateAwaitingOTP
		return persist(session, reply(
			"✅ Email found but not verified!\n\n"+
				"I've sent a verification code to your email.\n\n"+
				"Please enter the 6-digit OTP you received:"))
	}

	// Verified but basic info incomplete: resume the questionnaire.
	if existing.FirstName == "" || existing.LastName == "" || existing.BusinessName == "" {
		s.prefillSessionData(session, existing)
		session.State = models.StateAwaitingFirstName
		return persist(session, reply(
			"✅ Welcome back! Your email is verified.\n\n"+
				"Let's continue your application.\n\n"+
				"What's your first name?"))
	}

	// Complete but unpaid: regenerate the payment link.
	if existing.Paid == 0 {
		s.prefillSessionData(session, existing)

		link, err := s.backend.GetPaymentLink(session.Data.Email)
		if err != nil || !link.OK {
			if err != nil {
				log.Printf("❌ Payment link error for %s: %v", session.Phone, err)
			}
			return stay(reply(paymentLinkErrorMessage()))
		}

		session.State = models.StateAwaitingPayment
		return persist(session,
			reply("✅ Welcome back! Your application details are saved.\n\n"+
				"You need to complete your payment to proceed."),
			reply(paymentPromptMessage(link.Link, &session.Data)))
	}

	// Paid but no pitch video yet.
	if existing.WhatsAppMediaID == "" {
		s.prefillSessionData(session, existing)
		session.State = models.StateAwaitingPitchVideo
		return persist(session, reply(
			"✅ Welcome back! Your application has been submitted and payment received.\n\n"+
				pitchVideoPromptMessage()))
	}

	// Paid and video uploaded: nothing left to do.
	session.State = models.StateCompleted
	return persist(session, reply(
		"✅ Your application is already complete!\n\n"+
			"Our team will review your application and get back to you soon.\n\n"+
			"If you need any assistance, feel free to contact support at "+supportEmail+".\n\n"+
			"Type 'help' for available commands."))
}

// prefillSessionData copies known backend fields into the session so a
// returning user never re-answers a question the backend already has.
func (s *ConversationService) prefillSessionData(session *models.Session, existing *ExistingProfile) {
	data := &session.Data
	setIfPresent := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	setIfPresent(&data.FirstName, existing.FirstName)
	setIfPresent(&data.LastName, existing.LastName)
	setIfPresent(&data.Phone, existing.Phone)
	setIfPresent(&data.BusinessName, existing.BusinessName)
	setIfPresent(&data.BusinessDuration, existing.BusinessDuration)
	setIfPresent(&data.CACNumber, existing.CACNumber)
	setIfPresent(&data.LoanAmount, existing.AmountInWords)
	setIfPresent(&data.BusinessAddress, existing.BusinessAddress)
	setIfPresent(&data.Industry, existing.Industry)
	setIfPresent(&data.Twitter, existing.Twitter)
	setIfPresent(&data.Instagram, existing.Instagram)
	setIfPresent(&data.Facebook, existing.Facebook)
	setIfPresent(&data.LinkedIn, existing.LinkedIn)
	setIfPresent(&data.Referral, existing.Referral)
	setIfPresent(&data.PaymentReference, existing.PaymentReference)
	if existing.Paid == 1 {
		data.PaymentStatus = models.PaymentStatusConfirmed
	}
}

func (s *ConversationService) handleOTP(session *models.Session, text string) *stepResult {
	result, err := s.backend.VerifyEmail(session.Data.Email, text)
	if err != nil {
		log.Printf("❌ OTP verification failed for %s: %v", session.Phone, err)
		return stay(reply("❌ Could not verify OTP. Please try again later."))
	}

	if !result.OK {
		msg := result.Message
		if msg == "" {
			msg = "❌ Invalid OTP. Please enter the 6-digit code sent to your email:"
		}
		return stay(reply(msg))
	}

	session.State = models.StateAwaitingFirstName
	return persist(session, reply(
		"✅ Email verified successfully!\n\n"+
			"Now, let's collect your information.\n\n"+
			"What's your first name?"))
}

func (s *ConversationService) handleFirstName(session *models.Session, text string) *stepResult {
	if !utils.IsValidName(text) {
		return stay(reply("Please enter a valid first name (at least 2 characters):"))
	}
	session.Data.FirstName = text
	session.State = models.StateAwaitingLastName
	return persist(session, reply("What's your last name?"))
}

func (s *ConversationService) handleLastName(session *models.Session, text string) *stepResult {
	if !utils.IsValidName(text) {
		return stay(reply("Please enter a valid last name (at least 2 characters):"))
	}
	session.Data.LastName = text
	session.State = models.StateAwaitingPhone
	return persist(session, reply("What's your phone number? (e.g., +2348012345678 or 08012345678):"))
}

func (s *ConversationService) handlePhone(session *models.Session, text string) *stepResult {
	if !utils.IsValidPhone(text) {
		return stay(reply("❌ Please enter a valid Nigerian phone number (e.g., +2348012345678 or 08012345678):"))
	}
	session.Data.Phone = text
	session.State = models.StateAwaitingBusinessName
	return persist(session, reply("What's your business name?"))
}

func (s *ConversationService) handleBusinessName(session *models.Session, text string) *stepResult {
	if !utils.IsValidName(text) {
		return stay(reply("Please enter a valid business name:"))
	}
	session.Data.BusinessName = text
	session.State = models.StateAwaitingBusinessDuration
	return persist(session, replyList(NewBusinessDurationListMessage()))
}

// Text in a fixed-choice state either names a valid option id (the text
// fallback path) or gets the choices presented again.
func (s *ConversationService) handleBusinessDurationText(session *models.Session, text string) *stepResult {
	if title, ok := BusinessDurationTitle(text); ok {
		return s.advanceBusinessDuration(session, title)
	}
	return stay(replyList(NewBusinessDurationListMessage()))
}

func (s *ConversationService) advanceBusinessDuration(session *models.Session, title string) *stepResult {
	session.Data.BusinessDuration = title
	session.State = models.StateAwaitingCACNumber
	return persist(session, reply("What's your CAC registration number? (Type 'skip' if not registered yet):"))
}

func (s *ConversationService) handleCACNumber(session *models.Session, text, lower string) *stepResult {
	if lower == "skip" {
		session.Data.CACNumber = ""
	} else {
		session.Data.CACNumber = text
	}
	session.State = models.StateAwaitingLoanAmount
	return persist(session, replyList(NewLoanAmountListMessage()))
}

func (s *ConversationService) handleLoanAmountText(session *models.Session, text string) *stepResult {
	if title, ok := LoanAmountTitle(text); ok {
		return s.advanceLoanAmount(session, title)
	}
	return stay(replyList(NewLoanAmountListMessage()))
}

func (s *ConversationService) advanceLoanAmount(session *models.Session, title string) *stepResult {
	session.Data.LoanAmount = title
	session.State = models.StateAwaitingBusinessAddress
	return persist(session, reply("What is your business address? (Street, City, State)"))
}

func (s *ConversationService) handleBusinessAddress(session *models.Session, text string) *stepResult {
	if text == "" {
		return stay(reply("Please enter your business address (Street, City, State):"))
	}
	session.Data.BusinessAddress = text
	session.State = models.StateAwaitingIndustry
	return persist(session, replyList(NewIndustryListMessage()))
}

func (s *ConversationService) handleIndustryText(session *models.Session, text string) *stepResult {
	if title, ok := IndustryTitle(text); ok {
		return s.advanceIndustry(session, title)
	}
	return stay(replyList(NewIndustryListMessage()))
}

func (s *ConversationService) advanceIndustry(session *models.Session, title string) *stepResult {
	session.Data.Industry = title
	session.State = models.StateAwaitingSocialMedia
	return persist(session, reply(
		"📱 Please share your social media handles (optional):\n\n"+
			"Format: Twitter: @handle, Instagram: @handle, Facebook: profile, LinkedIn: profile\n\n"+
			"Or type 'skip' to continue:"))
}

// handleSocialMedia parses comma-separated "platform: handle" pairs. A pair
// missing either side is dropped, platform matching is by substring so "My
// Twitter" still matches, later pairs overwrite earlier ones, and the handle
// itself is never validated. The state advances no matter what came in.
func (s *ConversationService) handleSocialMedia(session *models.Session, text, lower string) *stepResult {
	if lower != "skip" {
		parseSocialHandles(text, &session.Data)
	}
	session.State = models.StateAwaitingReferral
	return persist(session, reply("How did you hear about us? (referral name or 'none'):"))
}

func parseSocialHandles(text string, data *models.ApplicationData) {
	for _, pair := range strings.Split(text, ",") {
		platform, handle, found := strings.Cut(pair, ":")
		if !found {
			continue
		}
		platform = strings.ToLower(strings.TrimSpace(platform))
		handle = strings.TrimSpace(handle)
		if platform == "" || handle == "" {
			continue
		}
		switch {
		case strings.Contains(platform, "twitter"):
			data.Twitter = handle
		case strings.Contains(platform, "instagram"):
			data.Instagram = handle
		case strings.Contains(platform, "facebook"):
			data.Facebook = handle
		case strings.Contains(platform, "linkedin"):
			data.LinkedIn = handle
		}
	}
}

func (s *ConversationService) handleReferral(session *models.Session, text, lower string) *stepResult {
	if lower == "none" {
		session.Data.Referral = ""
	} else {
		session.Data.Referral = text
	}

	replies := []outbound{reply("⏳ Submitting your application details, please wait...")}

	result, err := s.backend.SubmitEntry(&session.Data)
	if err != nil {
		log.Printf("❌ Entry submission failed for %s: %v", session.Phone, err)
		replies = append(replies, reply("❌ Something went wrong while submitting. Please try again."))
		return stay(replies...)
	}

	if result.AlreadyPaid {
		session.State = models.StateAwaitingPitchVideo
		replies = append(replies, reply(
			"✅ Your application has already been submitted and payment received! Please proceed to upload your pitch video.\n\n"+
				"You can upload your pitch video by sending it directly here in this chat."))
		return persist(session, replies...)
	}

	if !result.OK {
		msg := result.Message
		if msg == "" {
			msg = "❌ Could not submit your application. Please try again later."
		}
		replies = append(replies, reply(msg))
		return stay(replies...)
	}

	link, err := s.backend.GetPaymentLink(session.Data.Email)
	if err != nil || !link.OK {
		if err != nil {
			log.Printf("❌ Payment link error for %s: %v", session.Phone, err)
		}
		replies = append(replies, reply(paymentLinkErrorMessage()))
	} else {
		replies = append(replies, reply(paymentPromptMessage(link.Link, &session.Data)))
	}

	// The entry is submitted either way; the user can still retry the link
	// from the payment state.
	session.State = models.StateAwaitingPayment
	return persist(session, replies...)
}

// isReferenceLike is the transaction reference heuristic: anything longer
// than 5 characters that isn't a command is treated as a reference.
func isReferenceLike(text string) bool {
	return len(text) > 5
}

func (s *ConversationService) handlePayment(session *models.Session, text, lower string) *stepResult {
	if lower == "check payment" || lower == "payment status" {
		return stay(reply(s.paymentStatusReply(session)))
	}

	if isReferenceLike(text) {
		// User-supplied reference: hold in the pending sub-state until the
		// provider confirms.
		session.Data.PaymentReference = text
		session.Data.PaymentStatus = models.PaymentStatusPending
		session.State = models.StatePaymentPending
		return persist(session, reply(
			"✅ Got it! We've recorded your transaction reference.\n\n"+
				"⏳ We'll confirm your payment shortly and let you know as soon as it's verified."))
	}

	return stay(reply(paymentWaitingMessage()))
}

func (s *ConversationService) paymentStatusReply(session *models.Session) string {
	switch session.Data.PaymentStatus {
	case models.PaymentStatusConfirmed:
		return "✅ Your payment has been confirmed!\n\nPlease proceed to upload your pitch video."
	case models.PaymentStatusPending:
		return paymentProcessingMessage()
	default:
		return paymentWaitingMessage()
	}
}

func (s *ConversationService) handlePaymentPending(session *models.Session, text, lower string) *stepResult {
	if lower == "check payment" || lower == "payment status" {
		return stay(reply(paymentProcessingMessage()))
	}

	// A fresh reference resubmission replaces the recorded one.
	if isReferenceLike(text) {
		session.Data.PaymentReference = text
		return persist(session, reply(
			"✅ Reference updated. We'll confirm your payment shortly."))
	}

	return stay(reply(
		"⏳ Your payment is still being processed. Please wait for confirmation.\n\n" +
			"You'll receive an automatic notification once payment is verified.\n\n" +
			"Type 'check payment' to see your current status."))
}

func (s *ConversationService) handlePitchVideo(session *models.Session, msg *models.InboundMessage) *stepResult {
	if msg.Kind != models.MessageKindVideo && msg.Kind != models.MessageKindDocument {
		return stay(reply(
			"⚠️ Please upload your pitch video as a video or document file.\n\n" +
				"📹 Accepted formats:\n" +
				"• Video files (MP4, MOV, AVI, etc.)\n" +
				"• Document files (if your video is compressed)\n\n" +
				"Please send your pitch video now."))
	}

	if msg.MediaID == "" {
		return stay(reply(
			"❌ No media file detected. Please upload your pitch video by sending it directly here in this chat.\n\n" +
				"If you need help, type 'help' for assistance."))
	}

	replies := []outbound{reply("⏳ Uploading your pitch video, please wait...")}

	result, err := s.backend.UploadPitchVideo(session.Data.Email, msg.MediaID)
	if err != nil {
		log.Printf("❌ Pitch video upload failed for %s: %v", session.Phone, err)
		replies = append(replies, reply("❌ Could not upload your pitch video. Please try again."))
		return stay(replies...)
	}

	if !result.OK {
		msg := result.Message
		if msg == "" {
			msg = "❌ Could not upload your pitch video. Please try again."
		}
		replies = append(replies, reply(msg))
		return stay(replies...)
	}

	session.State = models.StateCompleted
	replies = append(replies, reply(completionMessage()))
	return persist(session, replies...)
}

// confirmPayment moves a session whose payment the provider (or an admin)
// confirmed into the pitch-video step. Callers hold the user's lock.
func (s *ConversationService) confirmPayment(session *models.Session) *stepResult {
	if session.Data.PaymentReference == "" {
		log.Printf("⚠️  No payment reference on session for %s", session.Phone)
		return stay(reply("❌ Payment verification failed. Please contact support at " + supportEmail))
	}

	session.Data.PaymentStatus = models.PaymentStatusConfirmed
	session.Data.PaymentConfirmedAt = time.Now().Format(time.RFC3339)
	session.State = models.StateAwaitingPitchVideo

	return persist(session, reply(paymentConfirmedMessage(session.Data.PaymentReference, session.Data.PaymentAmount)))
}

// failPayment returns a session to the payment step after a provider-reported
// failure. Callers hold the user's lock.
func (s *ConversationService) failPayment(session *models.Session) *stepResult {
	session.Data.PaymentStatus = models.PaymentStatusFailed
	session.State = models.StateAwaitingPayment
	return persist(session, reply(paymentFailedMessage()))
}
