package service

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var errEmptyAmount = errors.New("empty amount")

// ParseAmount turns an extracted money or quantity string into a decimal.
// Currency markers are stripped; both "1,234.56" and "1.234,56" styles are
// accepted, the last separator winning as decimal point.
func ParseAmount(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, errEmptyAmount
	}

	var b strings.Builder
	for _, r := range trimmed {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastComma > lastDot:
		// comma is the decimal separator
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	case lastComma >= 0:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	return decimal.NewFromString(cleaned)
}

// dateLayouts covers the formats the email extractor is known to produce.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"2-1-2006",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
}

// ParseDate attempts the known date layouts; ok is false when none match.
func ParseDate(s string) (time.Time, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ERPDateLayout is the date format the ERP expects on document fields.
const ERPDateLayout = "2006-01-02"

// FormatERPDate re-renders an extracted date for the ERP; unparseable input
// is passed through untouched so the ERP can reject it with a message.
func FormatERPDate(s string) string {
	if t, ok := ParseDate(s); ok {
		return t.Format(ERPDateLayout)
	}
	return strings.TrimSpace(s)
}
