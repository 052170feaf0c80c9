package service

import (
	"encoding/json"
	"errors"

	"erp-injector/internal/erp"
)

// Document statuses assigned to freshly injected headers.
const (
	orderStatusOpen = "10"
	quoteStatusOpen = "10"
)

// jsonString renders a payload for the raw-request diagnostics carried on
// results. Encoding failures yield an empty string; diagnostics never fail
// a line.
func jsonString(payload any) string {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// apiErrorBody returns the raw ERP response body when err carries one.
func apiErrorBody(err error) string {
	var apiErr *erp.APIError
	if errors.As(err, &apiErr) {
		return string(apiErr.Body)
	}
	return ""
}
