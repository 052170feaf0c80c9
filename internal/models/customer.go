package models

import "time"

// CustomerInfo identifies the ERP customer an injected document belongs to.
// Instances are owned by the CustomerResolver cache; CachedAt bounds their
// lifetime.
type CustomerInfo struct {
	Administration string    `json:"administration"`
	DebtorNumber   string    `json:"debtor_number"`
	RelationNumber string    `json:"relation_number"`
	Name           string    `json:"name"`
	Active         bool      `json:"active"`
	CachedAt       time.Time `json:"cached_at"`
}
