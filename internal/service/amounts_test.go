package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain integer", "25", "25"},
		{"plain decimal", "12.50", "12.5"},
		{"comma decimal", "12,50", "12.5"},
		{"thousands dot comma decimal", "1.234,56", "1234.56"},
		{"thousands comma dot decimal", "1,234.56", "1234.56"},
		{"euro prefix", "€ 12,50", "12.5"},
		{"currency code", "EUR 1.250,00", "1250"},
		{"negative", "-3,5", "-3.5"},
		{"surrounding space", "  42  ", "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := ParseAmount(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, d.String())
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "n/a", "free of charge"} {
		_, err := ParseAmount(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"2026-09-15", "2026-09-15"},
		{"15-09-2026", "2026-09-15"},
		{"5-9-2026", "2026-09-05"},
		{"15/09/2026", "2026-09-15"},
		{"15.09.2026", "2026-09-15"},
	}
	for _, tc := range cases {
		parsed, ok := ParseDate(tc.in)
		require.True(t, ok, "input %q", tc.in)
		assert.Equal(t, tc.expected, parsed.Format(ERPDateLayout))
	}

	_, ok := ParseDate("next tuesday")
	assert.False(t, ok)
}

func TestFormatERPDate_PassesThroughUnparseable(t *testing.T) {
	assert.Equal(t, "2026-09-15", FormatERPDate("15-09-2026"))
	assert.Equal(t, "asap", FormatERPDate(" asap "))
	assert.Equal(t, "", FormatERPDate(""))
}
