package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"john@example.com",
		"first.last@sub.domain.co",
		"a@b.io",
	}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), "expected %q to be valid", email)
	}

	invalid := []string{
		"",
		"notanemail",
		"missing@tld",
		"spaces in@example.com",
		"@example.com",
		"john@",
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), "expected %q to be invalid", email)
	}
}

func TestIsValidPhone(t *testing.T) {
	valid := []string{
		"+2348012345678",
		"08012345678",
		"+2347012345678",
		"09112345678",
	}
	for _, phone := range valid {
		assert.True(t, IsValidPhone(phone), "expected %q to be valid", phone)
	}

	invalid := []string{
		"",
		"8012345678",     // missing prefix
		"+2346012345678", // bad operator digit
		"0802345678",     // too short
		"080123456789",   // too long
		"+1 555 0100",
	}
	for _, phone := range invalid {
		assert.False(t, IsValidPhone(phone), "expected %q to be invalid", phone)
	}
}

func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("Jo"))
	assert.True(t, IsValidName("  Ada  "))
	assert.False(t, IsValidName("A"))
	assert.False(t, IsValidName("   "))
	assert.False(t, IsValidName(""))
}

func TestNormalizePhone(t *testing.T) {
	normalized, err := NormalizePhone("+2348012345678")
	require.NoError(t, err)
	assert.Equal(t, "08012345678", normalized)

	normalized, err = NormalizePhone("08012345678")
	require.NoError(t, err)
	assert.Equal(t, "08012345678", normalized)

	_, err = NormalizePhone("+15550100")
	assert.Error(t, err)

	_, err = NormalizePhone("8012345678")
	assert.Error(t, err)
}
