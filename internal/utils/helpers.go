package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func StrOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// NilIfBlank returns nil for blank strings, otherwise a pointer to the trimmed value.
func NilIfBlank(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func ParseYMD(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	// strip time to midnight UTC to match DATE semantics
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(f float64) float64 {
	return RoundTo(f, 2)
}

func RoundTo(f float64, places int32) float64 {
	return decimal.NewFromFloat(f).Round(places).InexactFloat64()
}

// Money converts a float amount to a decimal for cent-exact arithmetic.
func Money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}
