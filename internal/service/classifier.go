package service

import (
	"strings"

	"erp-injector/internal/models"
)

// ErrorClassifier decides whether a failed ERP call violated a business
// rule or failed technically. Pluggable so the keyword fallback can be
// replaced by a structured error-code contract if the ERP ever grows one.
type ErrorClassifier interface {
	Classify(message string) models.LineStatus
}

// businessRuleKeywords mixes English and Dutch on purpose: the ERP answers
// in both depending on the endpoint.
var businessRuleKeywords = []string{
	"duplicate",
	"dubbel",
	"already exists",
	"bestaat al",
	"bestaat reeds",
	"invalid",
	"ongeldig",
	"business rule",
	"validation failed",
	"validatie mislukt",
	"voorraad tekort",
	"niet toegestaan",
	"not allowed",
	"verplicht veld",
	"required field",
}

// KeywordClassifier scans free-text ERP messages for known business-rule
// phrases. Anything unrecognized counts as a technical failure.
type KeywordClassifier struct {
	keywords []string
}

func NewKeywordClassifier(extra ...string) *KeywordClassifier {
	keywords := make([]string, 0, len(businessRuleKeywords)+len(extra))
	keywords = append(keywords, businessRuleKeywords...)
	keywords = append(keywords, extra...)
	return &KeywordClassifier{keywords: keywords}
}

func (c *KeywordClassifier) Classify(message string) models.LineStatus {
	lower := strings.ToLower(message)
	for _, keyword := range c.keywords {
		if strings.Contains(lower, keyword) {
			return models.StatusBusinessRuleViolation
		}
	}
	return models.StatusTechnicalFailure
}
