package service

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"erp-injector/internal/models"
)

// priceTolerance is the maximum allowed deviation between the stated line
// total and unit price times quantity.
var priceTolerance = decimal.NewFromFloat(0.01)

// The extractor emits these placeholder keys when no document number could
// be read from the email. Lines carrying them must never reach grouping.
const (
	invalidPONumber  = "PO-0"
	invalidRFQNumber = "RFQ-0"
)

// RuleValidator applies business invariants to line records before
// submission. All rules are evaluated independently; every violation is
// collected, nothing short-circuits.
type RuleValidator struct {
	now func() time.Time
}

func NewRuleValidator() *RuleValidator {
	return &RuleValidator{now: time.Now}
}

func (v *RuleValidator) ValidateOrderLine(line models.OrderLine) []string {
	violations := validateGroupKey("PO number", line.PONumber, invalidPONumber)
	return append(violations, v.validateCommon(line.ArticleCode, line.Quantity, line.UnitPrice, line.TotalPrice, line.DeliveryDate)...)
}

func (v *RuleValidator) ValidateQuoteLine(line models.QuoteLine) []string {
	violations := validateGroupKey("RFQ number", line.RFQNumber, invalidRFQNumber)
	return append(violations, v.validateCommon(line.ArticleCode, line.Quantity, line.UnitPrice, line.TotalPrice, line.DeliveryDate)...)
}

// ValidateRevisionLine checks the identifier rules; money rules do not
// apply to revisions.
func (v *RuleValidator) ValidateRevisionLine(line models.RevisionLine) []string {
	var violations []string

	if len(strings.TrimSpace(line.ArticleCode)) < 3 {
		violations = append(violations, "Article code must be at least 3 characters")
	}
	if strings.TrimSpace(line.CurrentRevision) == "" {
		violations = append(violations, "Current revision is required")
	}
	if strings.TrimSpace(line.NewRevision) == "" {
		violations = append(violations, "New revision is required")
	} else if strings.EqualFold(strings.TrimSpace(line.CurrentRevision), strings.TrimSpace(line.NewRevision)) {
		violations = append(violations, "New revision must differ from current revision")
	}
	return violations
}

func validateGroupKey(label, key, invalidMarker string) []string {
	trimmed := strings.TrimSpace(key)
	switch {
	case trimmed == "":
		return []string{label + " is required"}
	case strings.EqualFold(trimmed, invalidMarker):
		return []string{label + " is missing or unreadable"}
	}
	return nil
}

func (v *RuleValidator) validateCommon(articleCode, quantity, unitPrice, totalPrice, deliveryDate string) []string {
	var violations []string

	qty, qtyErr := ParseAmount(quantity)
	if qtyErr != nil || qty.Sign() <= 0 {
		violations = append(violations, "Quantity must be a positive number")
	}

	var price decimal.Decimal
	priceParsed := false
	if strings.TrimSpace(unitPrice) != "" {
		var err error
		price, err = ParseAmount(unitPrice)
		if err != nil {
			violations = append(violations, "Unit price is not a valid amount")
		} else if price.Sign() < 0 {
			violations = append(violations, "Unit price must not be negative")
		} else {
			priceParsed = true
		}
	}

	if strings.TrimSpace(deliveryDate) != "" {
		if date, ok := ParseDate(deliveryDate); ok {
			now := v.now()
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			if date.Before(today) {
				violations = append(violations, "Delivery date is in the past")
			}
		}
	}

	if len(strings.TrimSpace(articleCode)) < 3 {
		violations = append(violations, "Article code must be at least 3 characters")
	}

	if priceParsed && qtyErr == nil && strings.TrimSpace(totalPrice) != "" {
		if total, err := ParseAmount(totalPrice); err == nil {
			diff := price.Mul(qty).Sub(total).Abs()
			if diff.GreaterThan(priceTolerance) {
				violations = append(violations, "Total price does not match unit price times quantity")
			}
		}
	}

	return violations
}
