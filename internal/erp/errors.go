package erp

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrLoginFailed is returned when the auth endpoint does not hand out a
// session cookie.
var ErrLoginFailed = errors.New("erp: login failed, no session cookie in response")

// APIError is the typed failure for every non-2xx ERP response.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("erp: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with HTTP 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Known substrings the ERP's HTML error pages carry. The raw markup is never
// surfaced to callers.
var htmlErrorPhrases = []string{
	"Bad Request",
	"Unauthorized",
	"Forbidden",
	"Not Found",
	"Internal Server Error",
	"Service Unavailable",
}

func looksLikeHTML(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return false
	}
	lower := strings.ToLower(string(trimmed))
	return strings.Contains(lower, "<html") || strings.HasPrefix(lower, "<!doctype")
}

// errorMessage derives a readable message from an error response body.
// JSON bodies surface the ERP's t_melding messages, HTML bodies are matched
// against known phrases, anything else falls back to the status text.
func errorMessage(statusCode int, body []byte) string {
	if looksLikeHTML(body) {
		for _, phrase := range htmlErrorPhrases {
			if strings.Contains(string(body), phrase) {
				return phrase
			}
		}
		return fmt.Sprintf("HTML error page (HTTP %d)", statusCode)
	}

	if env, err := ParseEnvelope(body); err == nil {
		if msgs := env.Messages(); len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	text := strings.TrimSpace(string(body))
	if text != "" && len(text) <= 512 {
		return text
	}
	return http.StatusText(statusCode)
}
