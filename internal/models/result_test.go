package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectionSummary_AppendCounters(t *testing.T) {
	s := NewInjectionSummary(KindOrders)

	s.Append(LineResult{ArticleCode: "A-1", Success: true, Status: StatusSuccess})
	s.Append(LineResult{ArticleCode: "A-2", Success: true, Status: StatusDuplicateSkipped})
	s.Append(LineResult{ArticleCode: "A-3", Status: StatusTechnicalFailure})
	s.Append(LineResult{ArticleCode: "A-4", Status: StatusBusinessRuleViolation})
	s.Append(LineResult{ArticleCode: "A-5", Status: StatusSourceNotFound})

	assert.Equal(t, 1, s.SuccessfulInjections)
	assert.Equal(t, 1, s.DuplicatesFiltered)
	assert.Equal(t, 3, s.FailedInjections)
	assert.Len(t, s.LineResults, 5)
}

func TestInjectionSummary_AppendStampsTimestamp(t *testing.T) {
	s := NewInjectionSummary(KindQuotes)
	s.Append(LineResult{ArticleCode: "A-1", Status: StatusSuccess})

	require.Len(t, s.LineResults, 1)
	assert.False(t, s.LineResults[0].Timestamp.IsZero())
}

func TestInjectionSummary_Snapshot(t *testing.T) {
	s := NewInjectionSummary(KindRevisions)
	s.Append(LineResult{ArticleCode: "A-1", Status: StatusSuccess})
	s.AddError("first")

	snap := s.Snapshot()
	s.Append(LineResult{ArticleCode: "A-2", Status: StatusTechnicalFailure})
	s.AddError("second")

	assert.Len(t, snap.LineResults, 1)
	assert.Len(t, snap.Errors, 1)
	assert.Len(t, s.LineResults, 2)
	assert.Len(t, s.Errors, 2)
}

func TestRevisionLine_BomIDs(t *testing.T) {
	line := RevisionLine{ArticleCode: "ART-300", CurrentRevision: "A", NewRevision: "B"}

	assert.Equal(t, "ART-300-A", line.SourceBomID())
	assert.Equal(t, "ART-300-B", line.TargetBomID())
	assert.Equal(t, "ART-300-B", line.GroupKey())
}

func TestInjectionRequest_Empty(t *testing.T) {
	assert.True(t, (&InjectionRequest{}).Empty())
	assert.False(t, (&InjectionRequest{Orders: []OrderLine{{PONumber: "PO-1"}}}).Empty())
	assert.False(t, (&InjectionRequest{Revisions: []RevisionLine{{ArticleCode: "A-1"}}}).Empty())
}
