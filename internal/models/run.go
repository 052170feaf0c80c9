package models

import "time"

// Run kinds, one per entity type the pipeline can inject.
const (
	KindOrders    = "orders"
	KindQuotes    = "quotes"
	KindRevisions = "revisions"
)

// Run statuses.
const (
	RunStatusQueued     = "queued"
	RunStatusProcessing = "processing"
	RunStatusCompleted  = "completed"
	RunStatusFailed     = "failed"
	RunStatusCanceled   = "canceled"
)

// InjectionRun is the persisted record of one pipeline execution for one
// entity kind.
type InjectionRun struct {
	ID                   int       `db:"id" json:"id"`
	RunCode              string    `db:"run_code" json:"run_code"`
	Kind                 string    `db:"kind" json:"kind"`
	Status               string    `db:"status" json:"status"`
	TotalLines           int       `db:"total_lines" json:"total_lines"`
	TotalGroups          int       `db:"total_groups" json:"total_groups"`
	SuccessfulInjections int       `db:"successful_injections" json:"successful_injections"`
	FailedInjections     int       `db:"failed_injections" json:"failed_injections"`
	DuplicatesFiltered   int       `db:"duplicates_filtered" json:"duplicates_filtered"`
	BusinessErrors       int       `db:"business_errors" json:"business_errors"`
	ErrorMessage         string    `db:"error_message" json:"error_message"`
	StartedAt            time.Time `db:"started_at" json:"started_at"`
	FinishedAt           time.Time `db:"finished_at" json:"finished_at"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// StoredLineResult is the persisted form of a LineResult.
type StoredLineResult struct {
	ID           int64     `db:"id" json:"id"`
	RunID        int       `db:"run_id" json:"run_id"`
	ArticleCode  string    `db:"article_code" json:"article_code"`
	GroupKey     string    `db:"group_key" json:"group_key"`
	Success      bool      `db:"success" json:"success"`
	Status       string    `db:"status" json:"status"`
	ErrorMessage string    `db:"error_message" json:"error_message"`
	HeaderID     string    `db:"header_id" json:"header_id"`
	RawRequest   string    `db:"raw_request" json:"raw_request,omitempty"`
	RawResponse  string    `db:"raw_response" json:"raw_response,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TaskTypeInjectionRun is the asynq task type executed by the worker.
const TaskTypeInjectionRun = "injection:run"

// InjectionTaskPayload is the asynq payload for one queued run. Exactly one
// of the line sets is populated, matching Kind.
type InjectionTaskPayload struct {
	RunID     int            `json:"run_id"`
	RunCode   string         `json:"run_code"`
	Kind      string         `json:"kind"`
	Orders    []OrderLine    `json:"orders,omitempty"`
	Quotes    []QuoteLine    `json:"quotes,omitempty"`
	Revisions []RevisionLine `json:"revisions,omitempty"`
}

// InjectionRequest is the API payload carrying extracted line records.
// At least one of the three sets must be non-empty.
type InjectionRequest struct {
	Orders    []OrderLine    `json:"orders" validate:"omitempty,dive"`
	Quotes    []QuoteLine    `json:"quotes" validate:"omitempty,dive"`
	Revisions []RevisionLine `json:"revisions" validate:"omitempty,dive"`
}

func (r InjectionRequest) Empty() bool {
	return len(r.Orders) == 0 && len(r.Quotes) == 0 && len(r.Revisions) == 0
}
