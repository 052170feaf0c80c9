package models

import "time"

// LineStatus classifies the outcome of a single injected line.
type LineStatus string

const (
	StatusSuccess               LineStatus = "SUCCESS"
	StatusDuplicateSkipped      LineStatus = "DUPLICATE_SKIPPED"
	StatusBusinessRuleViolation LineStatus = "BUSINESS_RULE_VIOLATION"
	StatusTechnicalFailure      LineStatus = "TECHNICAL_FAILURE"
	StatusSourceNotFound        LineStatus = "SOURCE_NOT_FOUND"
)

// HeaderResult is the outcome of one header-create call. It lives only for
// the duration of the group that produced it.
type HeaderResult struct {
	Success      bool   `json:"success"`
	HeaderID     string `json:"header_id"`
	ErrorMessage string `json:"error_message"`
	RawRequest   string `json:"raw_request,omitempty"`
	RawResponse  string `json:"raw_response,omitempty"`
}

// LineResult records the outcome for one rule-valid input line. Lines the
// RuleValidator rejects never produce a LineResult.
type LineResult struct {
	ArticleCode  string     `json:"article_code"`
	GroupKey     string     `json:"group_key"`
	Success      bool       `json:"success"`
	Status       LineStatus `json:"status"`
	ErrorMessage string     `json:"error_message"`
	HeaderID     string     `json:"header_id"`
	Timestamp    time.Time  `json:"timestamp"`
	RawRequest   string     `json:"raw_request,omitempty"`
	RawResponse  string     `json:"raw_response,omitempty"`
}

// InjectionSummary aggregates one pipeline run for a single entity kind.
// It is purely additive while the run is in flight; Snapshot freezes it.
type InjectionSummary struct {
	Kind                 string       `json:"kind"`
	StartedAt            time.Time    `json:"started_at"`
	FinishedAt           time.Time    `json:"finished_at"`
	TotalGroups          int          `json:"total_groups"`
	SuccessfulInjections int          `json:"successful_injections"`
	FailedInjections     int          `json:"failed_injections"`
	DuplicatesFiltered   int          `json:"duplicates_filtered"`
	BusinessErrors       int          `json:"business_errors"`
	LineResults          []LineResult `json:"line_results"`
	Errors               []string     `json:"errors"`
}

func NewInjectionSummary(kind string) *InjectionSummary {
	return &InjectionSummary{
		Kind:      kind,
		StartedAt: time.Now(),
	}
}

// Append records a line result and bumps the matching counters.
func (s *InjectionSummary) Append(r LineResult) {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	s.LineResults = append(s.LineResults, r)

	switch r.Status {
	case StatusSuccess:
		s.SuccessfulInjections++
	case StatusDuplicateSkipped:
		s.DuplicatesFiltered++
	default:
		s.FailedInjections++
	}
}

// AddError records a free-text run-level error.
func (s *InjectionSummary) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// Finish stamps the end time.
func (s *InjectionSummary) Finish() {
	s.FinishedAt = time.Now()
}

// Snapshot returns an immutable copy of the summary.
func (s *InjectionSummary) Snapshot() InjectionSummary {
	out := *s
	out.LineResults = make([]LineResult, len(s.LineResults))
	copy(out.LineResults, s.LineResults)
	out.Errors = make([]string, len(s.Errors))
	copy(out.Errors, s.Errors)
	return out
}
