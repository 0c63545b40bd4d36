package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Chilean RUT: body digits (optionally dotted), dash, verifier digit or K.
var rutRe = regexp.MustCompile(`^\d{1,2}\.?\d{3}\.?\d{3}-[\dkK]$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func IsValidRut(rut string) bool {
	return rutRe.MatchString(strings.TrimSpace(rut))
}

var one = decimal.NewFromInt(1)

// IsRate reports whether d is a percentage expressed as a fraction in [0,1].
func IsRate(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(one)
}

// MonthRange returns [start, end) of the calendar month in loc.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

// IsValidPeriod bounds recalculation periods.
func IsValidPeriod(month, year int) bool {
	return month >= 1 && month <= 12 && year >= 2000 && year <= 2100
}
