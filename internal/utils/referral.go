package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Referral codes are short uppercase alphanumeric strings printed on signup
// material; they are validated for shape before any lookup.
var referralCodePattern = regexp.MustCompile(`^[A-Z0-9]{6,10}$`)

// ValidReferralCode reports whether a code has a valid format.
func ValidReferralCode(code string) bool {
	return referralCodePattern.MatchString(code)
}

// GenerateReferralCode produces a new 8-character referral code.
// Uniqueness is guaranteed by the database index on Clinic.ReferralCode;
// callers retry on a duplicate-key error.
func GenerateReferralCode() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return raw[:8]
}
