package models

import "fmt"

// Line records are produced by the upstream email extractor. All business
// fields arrive as free text and are validated before injection; records are
// never mutated by the pipeline.

type OrderLine struct {
	PONumber      string `json:"po_number" validate:"required"`
	ArticleCode   string `json:"article_code" validate:"required"`
	Description   string `json:"description"`
	Quantity      string `json:"quantity" validate:"required"`
	Unit          string `json:"unit"`
	UnitPrice     string `json:"unit_price"`
	TotalPrice    string `json:"total_price"`
	DeliveryDate  string `json:"delivery_date"`
	DrawingNumber string `json:"drawing_number"`
	SourceDomain  string `json:"source_domain"`
}

// GroupKey clusters order lines into one ERP order header.
func (l OrderLine) GroupKey() string {
	return l.PONumber
}

type QuoteLine struct {
	RFQNumber    string `json:"rfq_number" validate:"required"`
	ArticleCode  string `json:"article_code" validate:"required"`
	Description  string `json:"description"`
	Quantity     string `json:"quantity" validate:"required"`
	Unit         string `json:"unit"`
	UnitPrice    string `json:"unit_price"`
	TotalPrice   string `json:"total_price"`
	DeliveryDate string `json:"delivery_date"`
	SourceDomain string `json:"source_domain"`
}

func (l QuoteLine) GroupKey() string {
	return l.RFQNumber
}

type RevisionLine struct {
	ArticleCode     string `json:"article_code" validate:"required"`
	CurrentRevision string `json:"current_revision" validate:"required"`
	NewRevision     string `json:"new_revision" validate:"required"`
	Description     string `json:"description"`
	DrawingNumber   string `json:"drawing_number"`
	SourceDomain    string `json:"source_domain"`
}

// GroupKey is the article+revision pair; a revision group normally holds a
// single line.
func (l RevisionLine) GroupKey() string {
	return fmt.Sprintf("%s-%s", l.ArticleCode, l.NewRevision)
}

// SourceBomID identifies the BOM the new revision is created from.
func (l RevisionLine) SourceBomID() string {
	return fmt.Sprintf("%s-%s", l.ArticleCode, l.CurrentRevision)
}

// TargetBomID identifies the BOM the revision call creates.
func (l RevisionLine) TargetBomID() string {
	return fmt.Sprintf("%s-%s", l.ArticleCode, l.NewRevision)
}
