package erp

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRequest(t *testing.T) {
	payload := DocumentRequest("vorr", []OrderRow{{
		HeaderNum:   "20001",
		ArticleCode: "ART-100",
		Quantity:    "25",
		Unit:        "st.",
	}})

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded map[string]map[string]map[string][]map[string]any
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	rows := decoded["request"]["InputData"]["vorr"]
	require.Len(t, rows, 1)
	assert.Equal(t, "20001", rows[0]["vorh_num"])
	assert.Equal(t, "ART-100", rows[0]["vorr_artikel"])
}

func TestFilterQuery(t *testing.T) {
	endpoint := FilterQuery(EndpointOrderHeaders, FilterExact("vorh_ref_uw", "PO-1001"))
	assert.Equal(t, "Documents/vorh/?filter=vorh_ref_uw+%3D+%27PO-1001%27", endpoint)

	endpoint = FilterQuery(EndpointOrderHeaders, FilterContains("vorh_ref_uw", "PO-1001"))
	assert.Equal(t, "Documents/vorh/?filter=vorh_ref_uw+LIKE+%27%2APO-1001%2A%27", endpoint)
}

func TestFilterExact_EscapesQuotes(t *testing.T) {
	expr := FilterExact("vorh_ref_uw", "O'Brien")
	assert.Equal(t, "vorh_ref_uw = 'O''Brien'", expr)
}

func TestRevisionServiceEndpoint(t *testing.T) {
	assert.Equal(t,
		"Documents/stlh/1+ART-300-A/Service/s_create_revision",
		RevisionServiceEndpoint("1", "ART-300-A"),
	)
	assert.Equal(t, "Documents/stlh/2+X-1", BomFetchEndpoint("2", "X-1"))
}
