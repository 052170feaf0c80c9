package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"erp-injector/internal/erp"
)

// SearchStrategy is one entry in an ordered duplicate-search chain: a query
// against the header table plus a predicate over the field it searched.
// Strategies run in priority order and the first match wins, so exact
// matches must precede the more permissive substring ones.
type SearchStrategy struct {
	Name  string
	Field string
	Query func(key string) string
	Match func(value, key string) bool
}

func matchEqualFold(value, key string) bool {
	return strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(key))
}

func matchContainsFold(value, key string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(strings.TrimSpace(key)))
}

// OrderDuplicateDetector decides whether an order header already exists for
// a PO number. The "contains" strategies can false-positive on numeric PO
// substrings ("PO-10" inside "PO-100"); that behavior is inherited and
// deliberately unchanged.
type OrderDuplicateDetector struct {
	client     ERPClient
	log        *logrus.Logger
	strategies []SearchStrategy
}

func NewOrderDuplicateDetector(client ERPClient, log *logrus.Logger) *OrderDuplicateDetector {
	return &OrderDuplicateDetector{
		client: client,
		log:    log,
		strategies: []SearchStrategy{
			{
				Name:  "reference exact",
				Field: "vorh_ref_uw",
				Query: func(key string) string {
					return erp.FilterQuery(erp.EndpointOrderHeaders, erp.FilterExact("vorh_ref_uw", key))
				},
				Match: matchEqualFold,
			},
			{
				Name:  "external code exact",
				Field: "vorh_bestelcode_extern",
				Query: func(key string) string {
					return erp.FilterQuery(erp.EndpointOrderHeaders, erp.FilterExact("vorh_bestelcode_extern", key))
				},
				Match: matchEqualFold,
			},
			{
				Name:  "reference contains",
				Field: "vorh_ref_uw",
				Query: func(key string) string {
					return erp.FilterQuery(erp.EndpointOrderHeaders, erp.FilterContains("vorh_ref_uw", key))
				},
				Match: matchContainsFold,
			},
			{
				Name:  "external code contains",
				Field: "vorh_bestelcode_extern",
				Query: func(key string) string {
					return erp.FilterQuery(erp.EndpointOrderHeaders, erp.FilterContains("vorh_bestelcode_extern", key))
				},
				Match: matchContainsFold,
			},
		},
	}
}

// Exists reports whether a header for groupKey is already present, and if
// so under which ERP id.
func (d *OrderDuplicateDetector) Exists(ctx context.Context, groupKey string) (bool, string, error) {
	for _, strategy := range d.strategies {
		raw, err := d.client.Get(ctx, strategy.Query(groupKey))
		if err != nil {
			if erp.IsNotFound(err) {
				continue
			}
			return false, "", err
		}

		env, err := erp.ParseEnvelope(raw)
		if err != nil {
			return false, "", err
		}

		for _, row := range env.Rows("vorh") {
			value := erp.StringValue(row[strategy.Field])
			if value == "" || !strategy.Match(value, groupKey) {
				continue
			}
			id := erp.StringValue(row["vorh_num"])
			d.log.WithFields(logrus.Fields{
				"group_key": groupKey,
				"strategy":  strategy.Name,
				"header_id": id,
			}).Info("existing order header found")
			return true, id, nil
		}
	}
	return false, "", nil
}

// QuoteDuplicateDetector checks the quote header table by external
// reference; any non-empty result counts as a duplicate.
type QuoteDuplicateDetector struct {
	client ERPClient
	log    *logrus.Logger
}

func NewQuoteDuplicateDetector(client ERPClient, log *logrus.Logger) *QuoteDuplicateDetector {
	return &QuoteDuplicateDetector{client: client, log: log}
}

func (d *QuoteDuplicateDetector) Exists(ctx context.Context, groupKey string) (bool, string, error) {
	endpoint := erp.FilterQuery(erp.EndpointQuoteHeaders, erp.FilterExact("vofh_ref_extern", groupKey))
	raw, err := d.client.Get(ctx, endpoint)
	if err != nil {
		if erp.IsNotFound(err) {
			return false, "", nil
		}
		return false, "", err
	}

	env, err := erp.ParseEnvelope(raw)
	if err != nil {
		return false, "", err
	}

	rows := env.Rows("vofh")
	if len(rows) == 0 {
		return false, "", nil
	}

	id := erp.StringValue(rows[0]["vofh_num"])
	d.log.WithFields(logrus.Fields{"group_key": groupKey, "header_id": id}).
		Info("existing quote header found")
	return true, id, nil
}

// RevisionDuplicateDetector checks BOM headers both by direct fetch and by
// filtered query; either hit counts.
type RevisionDuplicateDetector struct {
	client ERPClient
	log    *logrus.Logger
}

func NewRevisionDuplicateDetector(client ERPClient, log *logrus.Logger) *RevisionDuplicateDetector {
	return &RevisionDuplicateDetector{client: client, log: log}
}

// TargetExists reports whether the revision to be created already exists.
func (d *RevisionDuplicateDetector) TargetExists(ctx context.Context, administration, bomID string) (bool, error) {
	return d.bomExists(ctx, administration, bomID)
}

// SourceExists reports whether the BOM the revision is created from exists.
func (d *RevisionDuplicateDetector) SourceExists(ctx context.Context, administration, bomID string) (bool, error) {
	return d.bomExists(ctx, administration, bomID)
}

func (d *RevisionDuplicateDetector) bomExists(ctx context.Context, administration, bomID string) (bool, error) {
	raw, err := d.client.Get(ctx, erp.BomFetchEndpoint(administration, bomID))
	switch {
	case err == nil:
		if env, parseErr := erp.ParseEnvelope(raw); parseErr == nil && len(env.Rows("stlh")) > 0 {
			return true, nil
		}
	case !erp.IsNotFound(err):
		return false, err
	}

	endpoint := erp.FilterQuery(erp.EndpointBomHeaders, erp.FilterExact("stlh_id", bomID))
	raw, err = d.client.Get(ctx, endpoint)
	if err != nil {
		if erp.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}

	env, err := erp.ParseEnvelope(raw)
	if err != nil {
		return false, err
	}
	return len(env.Rows("stlh")) > 0, nil
}
