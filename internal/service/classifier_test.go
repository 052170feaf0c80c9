package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"erp-injector/internal/models"
)

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()

	cases := []struct {
		name     string
		message  string
		expected models.LineStatus
	}{
		{"english duplicate", "Order already exists", models.StatusBusinessRuleViolation},
		{"dutch duplicate", "Artikel bestaat al in administratie 1", models.StatusBusinessRuleViolation},
		{"validation failed", "erp: status 400: Validation failed for field vorr_aantal", models.StatusBusinessRuleViolation},
		{"dutch invalid", "Ongeldige eenheid", models.StatusBusinessRuleViolation},
		{"dutch required field", "Verplicht veld ontbreekt: debi_num", models.StatusBusinessRuleViolation},
		{"timeout", "Post \"Documents/vorr/\": context deadline exceeded", models.StatusTechnicalFailure},
		{"server error", "erp: status 500: Internal Server Error", models.StatusTechnicalFailure},
		{"empty", "", models.StatusTechnicalFailure},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, c.Classify(tc.message))
		})
	}
}

func TestKeywordClassifier_ExtraKeywords(t *testing.T) {
	c := NewKeywordClassifier("kredietlimiet")
	assert.Equal(t, models.StatusBusinessRuleViolation, c.Classify("Kredietlimiet overschreden"))

	base := NewKeywordClassifier()
	assert.Equal(t, models.StatusTechnicalFailure, base.Classify("Kredietlimiet overschreden"))
}
