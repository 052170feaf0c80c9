package erp

import (
	"fmt"
	"net/url"
	"strings"
)

// Document endpoints the pipeline writes to.
const (
	EndpointOrderHeaders = "Documents/vorh/"
	EndpointOrderLines   = "Documents/vorr/"
	EndpointQuoteHeaders = "Documents/vofh/"
	EndpointQuoteLines   = "Documents/vofr/"
	EndpointBomHeaders   = "Documents/stlh/"
	EndpointDebtors      = "Documents/debi/"
)

// OrderHeader is one vorh row in a header-create request.
type OrderHeader struct {
	Administration    string `json:"admi_num"`
	DebtorNumber      string `json:"debi_num"`
	RelationNumber    string `json:"rela_num"`
	Reference         string `json:"vorh_ref_uw"`
	Description       string `json:"vorh_omschrijving"`
	OrderDate         string `json:"vorh_datum"`
	RequestedDelivery string `json:"vorh_gewenste_leverdatum,omitempty"`
	Status            string `json:"vorh_status"`
	ExternalOrderCode string `json:"vorh_bestelcode_extern"`
}

// OrderRow is one vorr row referencing a created order header.
type OrderRow struct {
	HeaderNum    string `json:"vorh_num"`
	ArticleCode  string `json:"vorr_artikel"`
	Description  string `json:"vorr_omschrijving"`
	Quantity     string `json:"vorr_aantal"`
	Unit         string `json:"vorr_eenheid"`
	UnitPrice    string `json:"vorr_prijs,omitempty"`
	DeliveryDate string `json:"vorr_leverdatum,omitempty"`
}

// QuoteHeader is one vofh row in a quote header-create request.
type QuoteHeader struct {
	Administration    string `json:"admi_num"`
	DebtorNumber      string `json:"debi_num"`
	RelationNumber    string `json:"rela_num"`
	ExternalReference string `json:"vofh_ref_extern"`
	Description       string `json:"vofh_omschrijving"`
	QuoteDate         string `json:"vofh_datum"`
	Status            string `json:"vofh_status"`
}

// QuoteRow is one vofr row referencing a created quote header.
type QuoteRow struct {
	HeaderNum    string `json:"vofh_num"`
	ArticleCode  string `json:"vofr_artikel"`
	Description  string `json:"vofr_omschrijving"`
	Quantity     string `json:"vofr_aantal"`
	Unit         string `json:"vofr_eenheid"`
	UnitPrice    string `json:"vofr_prijs,omitempty"`
	DeliveryDate string `json:"vofr_leverdatum,omitempty"`
}

// PartListRevision is the payload for the s_create_revision BOM service.
// The copy flags carry the source BOM structure over to the new revision.
type PartListRevision struct {
	NewRevisionID  string `json:"stlh_id_nieuw"`
	Description    string `json:"stlh_omschrijving"`
	DrawingNumber  string `json:"stlh_tekening,omitempty"`
	CopyMaterials  bool   `json:"kopieer_materialen"`
	CopyOperations bool   `json:"kopieer_bewerkingen"`
	CopyDocuments  bool   `json:"kopieer_documenten"`
}

// DocumentRequest wraps table rows in the request/InputData envelope every
// document create expects.
func DocumentRequest(table string, rows any) map[string]any {
	return map[string]any{
		"request": map[string]any{
			"InputData": map[string]any{
				table: rows,
			},
		},
	}
}

// RevisionRequest wraps a PartListRevision for the BOM revision service.
func RevisionRequest(rev PartListRevision) map[string]any {
	return map[string]any{
		"PartListRevision": rev,
	}
}

// RevisionServiceEndpoint builds the s_create_revision path for a source BOM.
func RevisionServiceEndpoint(administration, sourceBomID string) string {
	return fmt.Sprintf("%s%s+%s/Service/s_create_revision", EndpointBomHeaders, administration, sourceBomID)
}

// BomFetchEndpoint builds the direct-fetch path for a BOM header.
func BomFetchEndpoint(administration, bomID string) string {
	return fmt.Sprintf("%s%s+%s", EndpointBomHeaders, administration, bomID)
}

// FilterExact builds an exact-match filter expression.
func FilterExact(field, value string) string {
	return fmt.Sprintf("%s = '%s'", field, escapeFilterValue(value))
}

// FilterContains builds a substring-match filter expression.
func FilterContains(field, value string) string {
	return fmt.Sprintf("%s LIKE '*%s*'", field, escapeFilterValue(value))
}

// FilterQuery appends a filter expression to a document endpoint.
func FilterQuery(endpoint, expr string) string {
	return endpoint + "?filter=" + url.QueryEscape(expr)
}

func escapeFilterValue(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}
