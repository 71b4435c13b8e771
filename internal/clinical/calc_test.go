package clinical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAge(t *testing.T) {
	dob := date(1990, time.June, 15)

	// Day before the birthday the previous age still applies.
	assert.Equal(t, 35, Age(dob, date(2026, time.June, 14)))
	assert.Equal(t, 36, Age(dob, date(2026, time.June, 15)))
	assert.Equal(t, 36, Age(dob, date(2026, time.June, 16)))

	// Earlier month in the year.
	assert.Equal(t, 35, Age(dob, date(2026, time.January, 1)))
	// Later month in the year.
	assert.Equal(t, 36, Age(dob, date(2026, time.December, 31)))

	// Newborn.
	assert.Equal(t, 0, Age(date(2026, time.January, 10), date(2026, time.August, 1)))
}

func TestBMI(t *testing.T) {
	tests := []struct {
		name     string
		weightKg float64
		heightCm float64
		value    float64
		category string
	}{
		{"normal", 70, 175, 22.9, BMINormal},
		{"underweight", 45, 170, 15.6, BMIUnderweight},
		{"overweight", 80, 170, 27.7, BMIOverweight},
		{"obese", 100, 170, 34.6, BMIObese},
		{"underweight boundary", 56.7, 175, 18.5, BMINormal},
		{"zero weight", 0, 175, 0, BMIUndefined},
		{"zero height", 70, 0, 0, BMIUndefined},
		{"negative input", -5, 175, 0, BMIUndefined},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			value, category := BMI(tc.weightKg, tc.heightCm)
			assert.InDelta(t, tc.value, value, 0.001)
			assert.Equal(t, tc.category, category)
		})
	}
}

func TestExpectedDueDate(t *testing.T) {
	due := ExpectedDueDate(date(2024, time.January, 1))
	assert.Equal(t, date(2024, time.October, 7), due)
}

func TestGestationLabel(t *testing.T) {
	start := date(2026, time.January, 1)

	assert.Equal(t, "0w 0d", GestationLabel(start, start))
	assert.Equal(t, "1w 3d", GestationLabel(start, date(2026, time.January, 11)))
	assert.Equal(t, "12w 0d", GestationLabel(start, date(2026, time.March, 26)))

	// Before the start date nothing is rendered.
	assert.Equal(t, "", GestationLabel(start, date(2025, time.December, 31)))

	// Past day 280 the label is still produced, flagged as past due.
	past := start.AddDate(0, 0, 290)
	assert.Equal(t, "41w 3d (past due date)", GestationLabel(start, past))
}
