package services

import (
	"fmt"
	"strings"
)

// Option is one selectable entry in a fixed-choice question. The ID is the
// wire value exchanged with the user; the Title is what gets persisted into
// session data once selected.
type Option struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Industries lists the industry categories offered during the questionnaire.
var Industries = []Option{
	{ID: "agriculture", Title: "Agriculture & Farming"},
	{ID: "technology", Title: "Technology & IT"},
	{ID: "retail", Title: "Retail & Trading"},
	{ID: "manufacturing", Title: "Manufacturing"},
	{ID: "food_beverage", Title: "Food & Beverage"},
	{ID: "fashion", Title: "Fashion & Textile"},
	{ID: "healthcare", Title: "Healthcare & Medical"},
	{ID: "finance", Title: "Finance & Insurance"},
	{ID: "beauty", Title: "Beauty & Personal Care"},
	{ID: "other", Title: "Other"},
}

// BusinessDurations lists the business-age buckets.
var BusinessDurations = []Option{
	{ID: "less_than_6_months", Title: "Less than 6 months"},
	{ID: "6_months_1_year", Title: "6 months - 1 year"},
	{ID: "1_2_years", Title: "1 - 2 years"},
	{ID: "2_3_years", Title: "2 - 3 years"},
	{ID: "3_5_years", Title: "3 - 5 years"},
	{ID: "more_than_5_years", Title: "More than 5 years"},
}

// LoanAmounts lists the loan amount buckets.
var LoanAmounts = []Option{
	{ID: "50000_100000", Title: "₦50,000 - ₦100,000"},
	{ID: "100000_250000", Title: "₦100,000 - ₦250,000"},
	{ID: "250000_500000", Title: "₦250,000 - ₦500,000"},
	{ID: "500000_1000000", Title: "₦500,000 - ₦1,000,000"},
	{ID: "1000000_2500000", Title: "₦1,000,000 - ₦2,500,000"},
	{ID: "2500000_5000000", Title: "₦2,500,000 - ₦5,000,000"},
	{ID: "above_5000000", Title: "Above ₦5,000,000"},
}

func findOption(options []Option, id string) (Option, bool) {
	for _, opt := range options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// IndustryTitle resolves an industry id to its display title.
func IndustryTitle(id string) (string, bool) {
	opt, ok := findOption(Industries, id)
	return opt.Title, ok
}

// BusinessDurationTitle resolves a business-duration id to its display title.
func BusinessDurationTitle(id string) (string, bool) {
	opt, ok := findOption(BusinessDurations, id)
	return opt.Title, ok
}

// LoanAmountTitle resolves a loan-amount id to its display title.
func LoanAmountTitle(id string) (string, bool) {
	opt, ok := findOption(LoanAmounts, id)
	return opt.Title, ok
}

// OptionSection groups options under a heading inside a list message.
type OptionSection struct {
	Title string   `json:"title"`
	Rows  []Option `json:"rows"`
}

// OptionListMessage is an interactive list prompt. The transport decides how
// to render it: a WhatsApp list via a registered content template, or a plain
// text fallback the user answers by typing the option id.
type OptionListMessage struct {
	Header     string          `json:"header"`
	Body       string          `json:"body"`
	Footer     string          `json:"footer"`
	ButtonText string          `json:"button_text"`
	Sections   []OptionSection `json:"sections"`

	// ContentSIDVar names the environment variable holding the Twilio
	// content template SID for this list, when one is configured.
	ContentSIDVar string `json:"-"`
}

// NewIndustryListMessage builds the industry selection prompt.
func NewIndustryListMessage() *OptionListMessage {
	return &OptionListMessage{
		Header:     "Select Your Industry",
		Body:       "What industry is your business in? This helps us understand your business better.",
		Footer:     "Choose the category that best fits",
		ButtonText: "Select Industry",
		Sections: []OptionSection{
			{Title: "Business & Services", Rows: Industries[:9]},
			{Title: "Other Industries", Rows: Industries[9:]},
		},
		ContentSIDVar: "TWILIO_CONTENT_SID_INDUSTRY",
	}
}

// NewBusinessDurationListMessage builds the business-duration prompt.
func NewBusinessDurationListMessage() *OptionListMessage {
	return &OptionListMessage{
		Header:     "Business Duration",
		Body:       "How long has your business been operating? This helps us assess your business maturity.",
		Footer:     "Select your business age",
		ButtonText: "Select Duration",
		Sections: []OptionSection{
			{Title: "Business Age", Rows: BusinessDurations},
		},
		ContentSIDVar: "TWILIO_CONTENT_SID_BUSINESS_DURATION",
	}
}

// NewLoanAmountListMessage builds the loan-amount prompt.
func NewLoanAmountListMessage() *OptionListMessage {
	return &OptionListMessage{
		Header:     "Select Loan Amount",
		Body:       "How much loan amount are you applying for? Choose the range that matches your needs.",
		Footer:     "Select your preferred range",
		ButtonText: "Select Amount",
		Sections: []OptionSection{
			{Title: "Small to Medium Loans", Rows: LoanAmounts[:4]},
			{Title: "Large Loans", Rows: LoanAmounts[4:]},
		},
		ContentSIDVar: "TWILIO_CONTENT_SID_LOAN_AMOUNT",
	}
}

// TextFallback renders the list as a plain message the user can answer by
// typing an option id.
func (m *OptionListMessage) TextFallback() string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n%s\n", m.Header, m.Body)
	for _, section := range m.Sections {
		fmt.Fprintf(&b, "\n_%s_\n", section.Title)
		for _, row := range section.Rows {
			fmt.Fprintf(&b, "• %s — reply '%s'\n", row.Title, row.ID)
		}
	}
	fmt.Fprintf(&b, "\n%s", m.Footer)
	return b.String()
}
