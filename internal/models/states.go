package models

// UserState is the position of a user inside the loan-application conversation.
// States only move forward along the questionnaire except for the global
// cancel/restart commands and the payment-failed fallback.
type UserState string

const (
	StateInitial                  UserState = "initial"
	StateAwaitingEmail            UserState = "awaiting_email"
	StateAwaitingOTP              UserState = "awaiting_otp"
	StateAwaitingFirstName        UserState = "awaiting_first_name"
	StateAwaitingLastName         UserState = "awaiting_last_name"
	StateAwaitingPhone            UserState = "awaiting_phone"
	StateAwaitingBusinessName     UserState = "awaiting_business_name"
	StateAwaitingBusinessDuration UserState = "awaiting_business_duration"
	StateAwaitingCACNumber        UserState = "awaiting_cac_number"
	StateAwaitingLoanAmount       UserState = "awaiting_loan_amount"
	StateAwaitingBusinessAddress  UserState = "awaiting_business_address"
	StateAwaitingIndustry         UserState = "awaiting_industry"
	StateAwaitingSocialMedia      UserState = "awaiting_social_media"
	StateAwaitingReferral         UserState = "awaiting_referral"
	StateAwaitingPayment          UserState = "awaiting_payment"
	StatePaymentPending           UserState = "payment_pending"
	StateAwaitingPitchVideo       UserState = "awaiting_pitch_video"
	StateCompleted                UserState = "completed"
)

// stateLabels maps each state to the human-readable label reported by the
// 'status' command.
var stateLabels = map[UserState]string{
	StateInitial:                  "Not started",
	StateAwaitingEmail:            "Waiting for email address",
	StateAwaitingOTP:              "Waiting for email verification",
	StateAwaitingFirstName:        "Collecting personal information (first name)",
	StateAwaitingLastName:         "Collecting personal information (last name)",
	StateAwaitingPhone:            "Collecting contact information",
	StateAwaitingBusinessName:     "Collecting business information",
	StateAwaitingBusinessDuration: "Collecting business details",
	StateAwaitingCACNumber:        "Collecting registration details",
	StateAwaitingLoanAmount:       "Collecting loan information",
	StateAwaitingBusinessAddress:  "Collecting location information",
	StateAwaitingIndustry:         "Collecting industry information",
	StateAwaitingSocialMedia:      "Collecting social media (optional)",
	StateAwaitingReferral:         "Collecting referral information",
	StateAwaitingPayment:          "Waiting for payment confirmation",
	StatePaymentPending:           "Payment is being processed",
	StateAwaitingPitchVideo:       "Waiting for pitch video upload",
	StateCompleted:                "Application completed",
}

// Label returns the human-readable description of the state.
func (s UserState) Label() string {
	if label, ok := stateLabels[s]; ok {
		return label
	}
	return "Unknown status"
}

// IsPaymentState reports whether a session in this state can still receive
// payment provider events.
func (s UserState) IsPaymentState() bool {
	return s == StateAwaitingPayment || s == StatePaymentPending
}
