package service

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// unitSynonyms maps free-text unit spellings to the ERP's canonical unit
// vocabulary. Matching is case-insensitive.
var unitSynonyms = map[string]string{
	"pcs":    "st.",
	"pc":     "st.",
	"piece":  "st.",
	"pieces": "st.",
	"ea":     "st.",
	"each":   "st.",
	"stuk":   "st.",
	"stuks":  "st.",
	"st":     "st.",
	"st.":    "st.",

	"m":      "m",
	"mtr":    "m",
	"meter":  "m",
	"meters": "m",

	"mm": "mm",
	"cm": "cm",

	"m2": "m2",
	"m²": "m2",

	"kg":       "kg",
	"kilo":     "kg",
	"kilogram": "kg",
	"g":        "g",
	"gram":     "g",

	"l":     "l",
	"ltr":   "l",
	"liter": "l",

	"set":  "set",
	"sets": "set",
}

// UnitNormalizer maps extracted unit strings to canonical ERP units.
// Unknown units are lower-cased and passed through with a warning; the
// pipeline never rejects a line over its unit.
type UnitNormalizer struct {
	log *logrus.Logger
}

func NewUnitNormalizer(log *logrus.Logger) *UnitNormalizer {
	return &UnitNormalizer{log: log}
}

func (n *UnitNormalizer) Normalize(unit string) string {
	trimmed := strings.ToLower(strings.TrimSpace(unit))
	if trimmed == "" {
		return "st."
	}
	if canonical, ok := unitSynonyms[trimmed]; ok {
		return canonical
	}
	n.log.WithField("unit", unit).Warn("unrecognized unit, passing through")
	return trimmed
}
