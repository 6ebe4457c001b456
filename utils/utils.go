package utils

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// NormalizePhoneNumber strips whitespace and separator characters so the same
// number always hits the same voter and OTP rows.
func NormalizePhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	return phone
}

// ValidatePhoneNumber validates a phone number.
// Allows: 10-15 digits with an optional leading + (e.g. 09137901844 or +989137901844)
func ValidatePhoneNumber(phone string) bool {
	return phonePattern.MatchString(NormalizePhoneNumber(phone))
}
