package utils

import (
	"regexp"
	"strings"
)

var (
	mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)
	otpPattern    = regexp.MustCompile(`^[0-9]{6}$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidMobileNumber accepts exactly ten ASCII digits.
func ValidMobileNumber(n string) bool {
	return mobilePattern.MatchString(n)
}

// ValidOTP accepts exactly six ASCII digits.
func ValidOTP(code string) bool {
	return otpPattern.MatchString(code)
}

// ValidEmail performs the same loose local@domain.tld check as the app form.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}
