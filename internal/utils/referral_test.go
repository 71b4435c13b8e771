package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidReferralCode(t *testing.T) {
	valid := []string{"ABC123", "CLINIC01", "A1B2C3D4E5", "999999"}
	for _, code := range valid {
		assert.True(t, ValidReferralCode(code), "expected %q to be valid", code)
	}

	invalid := []string{"", "abc123", "ABC12", "A1B2C3D4E5F", "ABC 123", "ABC-12"}
	for _, code := range invalid {
		assert.False(t, ValidReferralCode(code), "expected %q to be invalid", code)
	}
}

func TestGenerateReferralCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateReferralCode()
		assert.Len(t, code, 8)
		assert.True(t, ValidReferralCode(code), "generated code %q should pass validation", code)
		seen[code] = true
	}
	// uuid-derived codes should not collide in a small sample
	assert.Greater(t, len(seen), 90)
}
