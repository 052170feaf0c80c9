package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"erp-injector/internal/models"
)

func fixedValidator(t *testing.T) *RuleValidator {
	t.Helper()
	v := NewRuleValidator()
	v.now = func() time.Time {
		return time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)
	}
	return v
}

func validOrderLine() models.OrderLine {
	return models.OrderLine{
		PONumber:     "PO-1001",
		ArticleCode:  "ART-100",
		Description:  "Hex bolt M8",
		Quantity:     "25",
		Unit:         "pcs",
		UnitPrice:    "1.20",
		TotalPrice:   "30.00",
		DeliveryDate: "2026-04-01",
	}
}

func TestValidateOrderLine_Valid(t *testing.T) {
	v := fixedValidator(t)
	assert.Empty(t, v.ValidateOrderLine(validOrderLine()))
}

func TestValidateOrderLine_Violations(t *testing.T) {
	v := fixedValidator(t)

	cases := []struct {
		name     string
		mutate   func(*models.OrderLine)
		expected string
	}{
		{
			name:     "negative quantity",
			mutate:   func(l *models.OrderLine) { l.Quantity = "-1"; l.TotalPrice = "" },
			expected: "Quantity must be a positive number",
		},
		{
			name:     "zero quantity",
			mutate:   func(l *models.OrderLine) { l.Quantity = "0"; l.TotalPrice = "" },
			expected: "Quantity must be a positive number",
		},
		{
			name:     "unparseable quantity",
			mutate:   func(l *models.OrderLine) { l.Quantity = "some"; l.TotalPrice = "" },
			expected: "Quantity must be a positive number",
		},
		{
			name:     "negative unit price",
			mutate:   func(l *models.OrderLine) { l.UnitPrice = "-1.20"; l.TotalPrice = "" },
			expected: "Unit price must not be negative",
		},
		{
			name:     "garbage unit price",
			mutate:   func(l *models.OrderLine) { l.UnitPrice = "tbd"; l.TotalPrice = "" },
			expected: "Unit price is not a valid amount",
		},
		{
			name:     "delivery date in the past",
			mutate:   func(l *models.OrderLine) { l.DeliveryDate = "2026-03-09" },
			expected: "Delivery date is in the past",
		},
		{
			name:     "short article code",
			mutate:   func(l *models.OrderLine) { l.ArticleCode = "AB" },
			expected: "Article code must be at least 3 characters",
		},
		{
			name:     "total price mismatch",
			mutate:   func(l *models.OrderLine) { l.TotalPrice = "31.00" },
			expected: "Total price does not match unit price times quantity",
		},
		{
			name:     "placeholder po number",
			mutate:   func(l *models.OrderLine) { l.PONumber = "PO-0" },
			expected: "PO number is missing or unreadable",
		},
		{
			name:     "lowercase placeholder po number",
			mutate:   func(l *models.OrderLine) { l.PONumber = "po-0" },
			expected: "PO number is missing or unreadable",
		},
		{
			name:     "empty po number",
			mutate:   func(l *models.OrderLine) { l.PONumber = "  " },
			expected: "PO number is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line := validOrderLine()
			tc.mutate(&line)
			violations := v.ValidateOrderLine(line)
			assert.Contains(t, violations, tc.expected)
		})
	}
}

func TestValidateOrderLine_ToleranceAndOptionalFields(t *testing.T) {
	v := fixedValidator(t)

	// A rounding difference within a cent is accepted.
	line := validOrderLine()
	line.TotalPrice = "30.01"
	assert.Empty(t, v.ValidateOrderLine(line))

	// Delivery date on the validation day itself is not in the past.
	line = validOrderLine()
	line.DeliveryDate = "2026-03-10"
	assert.Empty(t, v.ValidateOrderLine(line))

	// Price, total and date are optional.
	line = validOrderLine()
	line.UnitPrice = ""
	line.TotalPrice = ""
	line.DeliveryDate = ""
	assert.Empty(t, v.ValidateOrderLine(line))
}

func TestValidateOrderLine_CollectsAllViolations(t *testing.T) {
	v := fixedValidator(t)
	line := models.OrderLine{
		PONumber:    "PO-1",
		ArticleCode: "AB",
		Quantity:    "-2",
		UnitPrice:   "-5",
	}
	violations := v.ValidateOrderLine(line)
	assert.Len(t, violations, 3)
}

func TestValidateQuoteLine(t *testing.T) {
	v := fixedValidator(t)
	line := models.QuoteLine{
		RFQNumber:   "RFQ-88",
		ArticleCode: "ART-200",
		Quantity:    "10",
		UnitPrice:   "4,50",
		TotalPrice:  "45,00",
	}
	assert.Empty(t, v.ValidateQuoteLine(line))

	line.Quantity = "0"
	assert.Contains(t, v.ValidateQuoteLine(line), "Quantity must be a positive number")

	line.Quantity = "10"
	line.RFQNumber = "RFQ-0"
	assert.Contains(t, v.ValidateQuoteLine(line), "RFQ number is missing or unreadable")

	line.RFQNumber = ""
	assert.Contains(t, v.ValidateQuoteLine(line), "RFQ number is required")
}

func TestValidateRevisionLine(t *testing.T) {
	v := fixedValidator(t)

	line := models.RevisionLine{
		ArticleCode:     "ART-300",
		CurrentRevision: "A",
		NewRevision:     "B",
	}
	assert.Empty(t, v.ValidateRevisionLine(line))

	cases := []struct {
		name     string
		mutate   func(*models.RevisionLine)
		expected string
	}{
		{
			name:     "short article code",
			mutate:   func(l *models.RevisionLine) { l.ArticleCode = "A" },
			expected: "Article code must be at least 3 characters",
		},
		{
			name:     "missing current revision",
			mutate:   func(l *models.RevisionLine) { l.CurrentRevision = "" },
			expected: "Current revision is required",
		},
		{
			name:     "missing new revision",
			mutate:   func(l *models.RevisionLine) { l.NewRevision = "" },
			expected: "New revision is required",
		},
		{
			name:     "same revision",
			mutate:   func(l *models.RevisionLine) { l.NewRevision = "a" },
			expected: "New revision must differ from current revision",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mutated := line
			tc.mutate(&mutated)
			assert.Contains(t, v.ValidateRevisionLine(mutated), tc.expected)
		})
	}
}
