package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-injector/internal/erp"
	"erp-injector/internal/models"
)

func newRevisionFixture(handler func(method, endpoint string, body any) ([]byte, error)) (*fakeERP, *recordSink, *RevisionInjector) {
	log := testLogger()
	client := &fakeERP{handler: handler}
	sink := &recordSink{}

	injector := NewRevisionInjector(
		client,
		NewCustomerResolver(client, defaultCustomer, time.Hour, log),
		NewRuleValidator(),
		NewRevisionDuplicateDetector(client, log),
		nil,
		sink,
		log,
	)
	return client, sink, injector
}

func revisionLine() models.RevisionLine {
	return models.RevisionLine{
		ArticleCode:     "ART-300",
		CurrentRevision: "A",
		NewRevision:     "B",
		Description:     "Bracket rev B",
		DrawingNumber:   "TK-300",
		SourceDomain:    "klant.nl",
	}
}

// revisionHandler simulates an ERP where only the named BOMs exist.
func revisionHandler(existing ...string) func(method, endpoint string, body any) ([]byte, error) {
	return func(method, endpoint string, body any) ([]byte, error) {
		switch {
		case method == "GET" && strings.HasPrefix(endpoint, "Documents/debi/"):
			return nil, notFoundErr()
		case method == "GET" && strings.HasPrefix(endpoint, "Documents/stlh/"):
			for _, id := range existing {
				if strings.Contains(endpoint, id) {
					return envelopeWithRows("stlh", `{"stlh_id":"`+id+`"}`), nil
				}
			}
			return nil, notFoundErr()
		case method == "PUT" && strings.Contains(endpoint, "s_create_revision"):
			return envelopeWithRows("stlh", `{"stlh_num":40001}`), nil
		}
		return emptyEnvelope(), nil
	}
}

func TestRevisionInjector_CreatesRevision(t *testing.T) {
	client, _, injector := newRevisionFixture(revisionHandler("ART-300-A"))

	summary, err := injector.Inject(context.Background(), []models.RevisionLine{revisionLine()})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.SuccessfulInjections)
	require.Len(t, summary.LineResults, 1)
	assert.Equal(t, models.StatusSuccess, summary.LineResults[0].Status)
	assert.Equal(t, "40001", summary.LineResults[0].HeaderID)

	calls := client.callsTo("PUT", "Documents/stlh/")
	require.Len(t, calls, 1)
	assert.Equal(t, "Documents/stlh/1+ART-300-A/Service/s_create_revision", calls[0].Endpoint)
	payload := jsonString(calls[0].Body)
	assert.Contains(t, payload, `"stlh_id_nieuw":"ART-300-B"`)
	assert.Contains(t, payload, `"kopieer_materialen":true`)
}

func TestRevisionInjector_ExistingTargetIsSkipped(t *testing.T) {
	client, sink, injector := newRevisionFixture(revisionHandler("ART-300-A", "ART-300-B"))

	summary, err := injector.Inject(context.Background(), []models.RevisionLine{revisionLine()})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DuplicatesFiltered)
	assert.Equal(t, 1, sink.duplicates)
	require.Len(t, summary.LineResults, 1)
	assert.True(t, summary.LineResults[0].Success)
	assert.Equal(t, models.StatusDuplicateSkipped, summary.LineResults[0].Status)
	assert.Equal(t, "ART-300-B", summary.LineResults[0].HeaderID)
	assert.Empty(t, client.callsTo("PUT", "Documents/stlh/"))
}

func TestRevisionInjector_MissingSourceFails(t *testing.T) {
	client, sink, injector := newRevisionFixture(revisionHandler())

	summary, err := injector.Inject(context.Background(), []models.RevisionLine{revisionLine()})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FailedInjections)
	assert.Equal(t, 1, sink.injectionErrors)
	require.Len(t, summary.LineResults, 1)
	assert.Equal(t, models.StatusSourceNotFound, summary.LineResults[0].Status)
	assert.Contains(t, summary.LineResults[0].ErrorMessage, "ART-300-A")
	assert.Empty(t, client.callsTo("PUT", "Documents/stlh/"))
}

func TestRevisionInjector_ServiceErrorIsClassified(t *testing.T) {
	handler := revisionHandler("ART-300-A")
	_, _, injector := newRevisionFixture(func(method, endpoint string, body any) ([]byte, error) {
		if method == "PUT" {
			return nil, &erp.APIError{StatusCode: 400, Message: "Revisie bestaat reeds"}
		}
		return handler(method, endpoint, body)
	})

	summary, err := injector.Inject(context.Background(), []models.RevisionLine{revisionLine()})
	require.NoError(t, err)

	require.Len(t, summary.LineResults, 1)
	assert.Equal(t, models.StatusBusinessRuleViolation, summary.LineResults[0].Status)
}

func TestRevisionInjector_InvalidLineIsFilteredOut(t *testing.T) {
	client, _, injector := newRevisionFixture(revisionHandler("ART-300-A"))

	line := revisionLine()
	line.NewRevision = "A" // same as current

	summary, err := injector.Inject(context.Background(), []models.RevisionLine{line})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.BusinessErrors)
	assert.Empty(t, summary.LineResults)
	assert.Empty(t, client.callsTo("GET", "Documents/stlh/"))
}
