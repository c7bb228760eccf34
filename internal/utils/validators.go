package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^(\+234|0)[7-9][0-1]\d{8}$`)
	// localPhoneRegex is the shape the backend expects after normalization.
	localPhoneRegex = regexp.MustCompile(`^0\d{10}$`)
)

// IsValidEmail checks the email syntax (RFC-light, matching the backend).
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidPhone checks for a Nigerian mobile number in +234 or 0 format.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// IsValidName accepts any text of at least 2 characters after trimming.
func IsValidName(name string) bool {
	return len(strings.TrimSpace(name)) >= 2
}

// NormalizePhone rewrites a leading +234 to a leading 0 and verifies the
// result is an 11-digit local number. The backend only accepts this format,
// so entry submission must fail here before any network call is made.
func NormalizePhone(phone string) (string, error) {
	normalized := phone
	if strings.HasPrefix(normalized, "+234") {
		normalized = "0" + normalized[4:]
	}
	if !localPhoneRegex.MatchString(normalized) {
		return "", fmt.Errorf("invalid phone number format: %q", phone)
	}
	return normalized, nil
}
