package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionTitleLookups(t *testing.T) {
	title, ok := IndustryTitle("agriculture")
	require.True(t, ok)
	assert.Equal(t, "Agriculture & Farming", title)

	title, ok = BusinessDurationTitle("1_2_years")
	require.True(t, ok)
	assert.Equal(t, "1 - 2 years", title)

	title, ok = LoanAmountTitle("above_5000000")
	require.True(t, ok)
	assert.Equal(t, "Above ₦5,000,000", title)

	_, ok = IndustryTitle("bogus")
	assert.False(t, ok)
	_, ok = LoanAmountTitle("")
	assert.False(t, ok)
}

func TestOptionCatalogsAreComplete(t *testing.T) {
	assert.Len(t, Industries, 10)
	assert.Len(t, BusinessDurations, 6)
	assert.Len(t, LoanAmounts, 7)

	// WhatsApp caps interactive lists at 10 rows per message.
	for _, list := range []*OptionListMessage{
		NewIndustryListMessage(),
		NewBusinessDurationListMessage(),
		NewLoanAmountListMessage(),
	} {
		rows := 0
		for _, section := range list.Sections {
			rows += len(section.Rows)
		}
		assert.LessOrEqual(t, rows, 10, "list %q has too many rows", list.Header)
		assert.NotEmpty(t, list.ContentSIDVar)
	}
}

func TestTextFallbackListsEveryOption(t *testing.T) {
	fallback := NewLoanAmountListMessage().TextFallback()
	for _, opt := range LoanAmounts {
		assert.Contains(t, fallback, opt.Title)
		assert.Contains(t, fallback, "'"+opt.ID+"'")
	}
	assert.Contains(t, fallback, "Select Loan Amount")
}
