package erp

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Envelope is the generic shape of every ERP document response. Tables show
// up as named arrays inside ResultData entries or OutputData.
type Envelope struct {
	Response struct {
		ResultData []map[string]json.RawMessage `json:"ResultData"`
		OutputData map[string]json.RawMessage   `json:"OutputData"`
	} `json:"response"`
}

func ParseEnvelope(raw []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("parse erp envelope: %w", err)
	}
	return &env, nil
}

// Rows collects all rows of the named table across ResultData and
// OutputData. Rows that fail to decode are skipped.
func (e *Envelope) Rows(table string) []map[string]any {
	var rows []map[string]any

	appendRows := func(raw json.RawMessage) {
		var decoded []map[string]any
		if err := json.Unmarshal(raw, &decoded); err == nil {
			rows = append(rows, decoded...)
		}
	}

	for _, set := range e.Response.ResultData {
		if raw, ok := set[table]; ok {
			appendRows(raw)
		}
	}
	if raw, ok := e.Response.OutputData[table]; ok {
		appendRows(raw)
	}
	return rows
}

// Messages returns the t_melding texts embedded in the response.
func (e *Envelope) Messages() []string {
	var out []string
	for _, row := range e.Rows("t_messages") {
		if m, ok := row["t_melding"]; ok {
			if text := StringValue(m); text != "" {
				out = append(out, text)
			}
		}
	}
	return out
}

// HeaderID extracts the system-assigned id of a created header, e.g.
// HeaderID(raw, "vorh", "vorh_num") after an order header create.
func HeaderID(raw []byte, table, idField string) (string, error) {
	env, err := ParseEnvelope(raw)
	if err != nil {
		return "", err
	}
	for _, row := range env.Rows(table) {
		if v, ok := row[idField]; ok {
			if id := StringValue(v); id != "" {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("no %s found in %s response", idField, table)
}

// StringValue renders a decoded JSON value as a plain string. The ERP is
// inconsistent about returning numbers vs. strings for id fields.
func StringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", val)
	}
}
