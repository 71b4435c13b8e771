// Package clinical holds the pure calculators used when documenting visits:
// patient age, BMI with category bucketing, and pregnancy duration / expected
// due date from a stored start date.
package clinical

import (
	"fmt"
	"math"
	"time"
)

// GestationDays is the fixed gestation assumption used for due-date arithmetic.
const GestationDays = 280

// Age returns whole years between dateOfBirth and now, decremented by one
// when the birthday has not yet occurred this year.
func Age(dateOfBirth, now time.Time) int {
	years := now.Year() - dateOfBirth.Year()
	if now.Month() < dateOfBirth.Month() ||
		(now.Month() == dateOfBirth.Month() && now.Day() < dateOfBirth.Day()) {
		years--
	}
	return years
}

// BMI categories
const (
	BMIUndefined   = "—"
	BMIUnderweight = "Underweight"
	BMINormal      = "Normal"
	BMIOverweight  = "Overweight"
	BMIObese       = "Obese"
)

// BMI computes body mass index from weight in kilograms and height in
// centimeters, rounded to one decimal, plus its category. Non-positive
// inputs yield (0, "—").
func BMI(weightKg, heightCm float64) (float64, string) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, BMIUndefined
	}
	heightM := heightCm / 100
	value := math.Round(weightKg/(heightM*heightM)*10) / 10

	switch {
	case value < 18.5:
		return value, BMIUnderweight
	case value < 25:
		return value, BMINormal
	case value < 30:
		return value, BMIOverweight
	default:
		return value, BMIObese
	}
}

// ExpectedDueDate returns the due date for a pregnancy start date.
func ExpectedDueDate(startDate time.Time) time.Time {
	return startDate.AddDate(0, 0, GestationDays)
}

// GestationLabel renders elapsed pregnancy duration as "Xw Yd". Before the
// start date it returns an empty string; past day 280 the label is still
// produced but marked past the due date.
func GestationLabel(startDate, now time.Time) string {
	days := int(now.Sub(startDate).Hours() / 24)
	if days < 0 {
		return ""
	}
	label := fmt.Sprintf("%dw %dd", days/7, days%7)
	if days > GestationDays {
		label += " (past due date)"
	}
	return label
}
