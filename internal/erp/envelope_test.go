package erp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope_RowsFromResultData(t *testing.T) {
	raw := []byte(`{"response":{"ResultData":[{"vorh":[{"vorh_num":123,"vorh_ref_uw":"PO-1001"},{"vorh_num":"124"}]}]}}`)

	env, err := ParseEnvelope(raw)
	require.NoError(t, err)

	rows := env.Rows("vorh")
	require.Len(t, rows, 2)
	assert.Equal(t, "123", StringValue(rows[0]["vorh_num"]))
	assert.Equal(t, "PO-1001", StringValue(rows[0]["vorh_ref_uw"]))
	assert.Equal(t, "124", StringValue(rows[1]["vorh_num"]))

	assert.Empty(t, env.Rows("vofh"))
}

func TestEnvelope_RowsFromOutputData(t *testing.T) {
	raw := []byte(`{"response":{"OutputData":{"stlh":[{"stlh_num":40001}]}}}`)

	env, err := ParseEnvelope(raw)
	require.NoError(t, err)

	rows := env.Rows("stlh")
	require.Len(t, rows, 1)
	assert.Equal(t, "40001", StringValue(rows[0]["stlh_num"]))
}

func TestEnvelope_Messages(t *testing.T) {
	raw := []byte(`{"response":{"ResultData":[{"t_messages":[{"t_melding":"Artikel bestaat al"},{"t_melding":"Verplicht veld ontbreekt"}]}]}}`)

	env, err := ParseEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Artikel bestaat al", "Verplicht veld ontbreekt"}, env.Messages())
}

func TestEnvelope_NoMessages(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"response":{"ResultData":[]}}`))
	require.NoError(t, err)
	assert.Empty(t, env.Messages())
}

func TestParseEnvelope_Invalid(t *testing.T) {
	_, err := ParseEnvelope([]byte(`<html>not json</html>`))
	assert.Error(t, err)
}

func TestHeaderID(t *testing.T) {
	raw := []byte(`{"response":{"ResultData":[{"vorh":[{"vorh_num":20001}]}]}}`)

	id, err := HeaderID(raw, "vorh", "vorh_num")
	require.NoError(t, err)
	assert.Equal(t, "20001", id)
}

func TestHeaderID_Missing(t *testing.T) {
	raw := []byte(`{"response":{"ResultData":[]}}`)

	_, err := HeaderID(raw, "vorh", "vorh_num")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vorh_num")
}

func TestStringValue(t *testing.T) {
	cases := []struct {
		name     string
		in       any
		expected string
	}{
		{"string", "abc", "abc"},
		{"integral float", float64(42), "42"},
		{"fractional float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"nil", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StringValue(tc.in))
		})
	}
}
