package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"erp-injector/internal/erp"
	"erp-injector/internal/models"
)

var errNoCustomerMatch = errors.New("no customer matched domain")

// CustomerResolver maps an email domain to ERP customer identifiers. Hits
// are cached for a bounded time. Resolution never blocks the pipeline;
// failures fall back to the configured default customer.
type CustomerResolver struct {
	client   ERPClient
	log      *logrus.Logger
	fallback models.CustomerInfo
	ttl      time.Duration

	mu    sync.Mutex
	cache map[string]models.CustomerInfo

	now func() time.Time
}

func NewCustomerResolver(client ERPClient, fallback models.CustomerInfo, ttl time.Duration, log *logrus.Logger) *CustomerResolver {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CustomerResolver{
		client:   client,
		log:      log,
		fallback: fallback,
		ttl:      ttl,
		cache:    make(map[string]models.CustomerInfo),
		now:      time.Now,
	}
}

// Resolve accepts a full address or a bare domain.
func (r *CustomerResolver) Resolve(ctx context.Context, emailOrDomain string) models.CustomerInfo {
	domain := ExtractDomain(emailOrDomain)
	if domain == "" {
		return r.fallback
	}

	r.mu.Lock()
	if hit, ok := r.cache[domain]; ok {
		if r.now().Sub(hit.CachedAt) < r.ttl {
			r.mu.Unlock()
			return hit
		}
		delete(r.cache, domain) // expired, evict lazily
	}
	r.mu.Unlock()

	info, err := r.lookup(ctx, domain)
	if err != nil {
		r.log.WithFields(logrus.Fields{"domain": domain, "error": err}).
			Warn("customer lookup failed, using default customer")
		return r.fallback
	}

	info.CachedAt = r.now()
	r.mu.Lock()
	r.cache[domain] = info
	r.mu.Unlock()
	return info
}

func (r *CustomerResolver) lookup(ctx context.Context, domain string) (models.CustomerInfo, error) {
	endpoint := erp.FilterQuery(erp.EndpointDebtors, erp.FilterContains("debi_email", "@"+domain))
	raw, err := r.client.Get(ctx, endpoint)
	if err != nil {
		return models.CustomerInfo{}, err
	}

	env, err := erp.ParseEnvelope(raw)
	if err != nil {
		return models.CustomerInfo{}, err
	}

	rows := env.Rows("debi")
	if len(rows) == 0 {
		return models.CustomerInfo{}, errNoCustomerMatch
	}

	// Prefer the first active debtor; fall back to the first row.
	chosen := rows[0]
	for _, row := range rows {
		if boolValue(row["debi_actief"]) {
			chosen = row
			break
		}
	}

	return models.CustomerInfo{
		Administration: erp.StringValue(chosen["admi_num"]),
		DebtorNumber:   erp.StringValue(chosen["debi_num"]),
		RelationNumber: erp.StringValue(chosen["rela_num"]),
		Name:           erp.StringValue(chosen["debi_naam"]),
		Active:         boolValue(chosen["debi_actief"]),
	}, nil
}

// ExtractDomain pulls the domain portion out of an address like
// "inkoop@klant.nl" or "Jan <jan@klant.nl>". Bare domains pass through.
func ExtractDomain(s string) string {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	trimmed = strings.TrimSuffix(trimmed, ">")
	if at := strings.LastIndex(trimmed, "@"); at >= 0 {
		trimmed = trimmed[at+1:]
	}
	return strings.TrimSpace(trimmed)
}

func boolValue(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return strings.EqualFold(val, "true") || strings.EqualFold(val, "ja") || val == "1"
	case float64:
		return val != 0
	default:
		return false
	}
}
