package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"erp-injector/internal/erp"
	"erp-injector/internal/models"
)

// OrderInjector drives the two-phase create protocol for purchase orders:
// group lines by PO number, skip groups whose header already exists, create
// the header, then inject lines one at a time. Failures are isolated per
// line and per group; one bad group never aborts the run.
type OrderInjector struct {
	client     ERPClient
	resolver   *CustomerResolver
	validator  *RuleValidator
	detector   *OrderDuplicateDetector
	classifier ErrorClassifier
	units      *UnitNormalizer
	sink       ProgressSink
	log        *logrus.Logger
}

func NewOrderInjector(
	client ERPClient,
	resolver *CustomerResolver,
	validator *RuleValidator,
	detector *OrderDuplicateDetector,
	classifier ErrorClassifier,
	units *UnitNormalizer,
	sink ProgressSink,
	log *logrus.Logger,
) *OrderInjector {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	if sink == nil {
		sink = NewLogSink(log)
	}
	return &OrderInjector{
		client:     client,
		resolver:   resolver,
		validator:  validator,
		detector:   detector,
		classifier: classifier,
		units:      units,
		sink:       sink,
		log:        log,
	}
}

// Inject runs the pipeline over a batch of order lines and returns the
// summary. A context error aborts between groups, surfacing the partial
// summary alongside the error.
func (inj *OrderInjector) Inject(ctx context.Context, lines []models.OrderLine) (*models.InjectionSummary, error) {
	summary := models.NewInjectionSummary(models.KindOrders)
	defer summary.Finish()

	valid := inj.filterValid(lines, summary)
	groups, keys := groupOrderLines(valid)
	summary.TotalGroups = len(keys)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			summary.AddError("run aborted: " + err.Error())
			return summary, err
		}
		inj.processGroup(ctx, key, groups[key], summary)
	}
	return summary, nil
}

func (inj *OrderInjector) filterValid(lines []models.OrderLine, summary *models.InjectionSummary) []models.OrderLine {
	valid := make([]models.OrderLine, 0, len(lines))
	for _, line := range lines {
		violations := inj.validator.ValidateOrderLine(line)
		if len(violations) == 0 {
			valid = append(valid, line)
			continue
		}
		detail := strings.Join(violations, "; ")
		summary.BusinessErrors++
		summary.AddError(fmt.Sprintf("order line %s (PO %s): %s", line.ArticleCode, line.PONumber, detail))
		inj.sink.OnBusinessError(line.ArticleCode, detail)
		inj.log.WithFields(logrus.Fields{
			"article_code": line.ArticleCode,
			"po_number":    line.PONumber,
			"violations":   violations,
		}).Warn("order line rejected by rule validation")
	}
	return valid
}

func groupOrderLines(lines []models.OrderLine) (map[string][]models.OrderLine, []string) {
	groups := make(map[string][]models.OrderLine)
	var keys []string
	for _, line := range lines {
		key := line.GroupKey()
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], line)
	}
	return groups, keys
}

func (inj *OrderInjector) processGroup(ctx context.Context, key string, group []models.OrderLine, summary *models.InjectionSummary) {
	inj.sink.OnProgress(fmt.Sprintf("Processing order %s (%d lines)", key, len(group)))

	found, existingID, err := inj.detector.Exists(ctx, key)
	if err != nil {
		inj.failGroup(summary, group, key, "", fmt.Sprintf("duplicate check failed: %v", err))
		return
	}
	if found {
		for _, line := range group {
			summary.Append(models.LineResult{
				ArticleCode: line.ArticleCode,
				GroupKey:    key,
				Success:     true,
				Status:      models.StatusDuplicateSkipped,
				HeaderID:    existingID,
			})
		}
		inj.sink.OnDuplicate(len(group))
		inj.sink.OnProgress(fmt.Sprintf("Order %s already exists as %s, skipped", key, existingID))
		return
	}

	header := inj.createHeader(ctx, key, group[0])
	if !header.Success {
		inj.log.WithFields(logrus.Fields{"group_key": key, "error": header.ErrorMessage}).
			Error("order header creation failed")
		for _, line := range group {
			summary.Append(models.LineResult{
				ArticleCode:  line.ArticleCode,
				GroupKey:     key,
				Status:       models.StatusTechnicalFailure,
				ErrorMessage: "header creation failed: " + header.ErrorMessage,
				RawRequest:   header.RawRequest,
				RawResponse:  header.RawResponse,
			})
			inj.sink.OnInjectionError()
		}
		return
	}

	for _, line := range group {
		if err := ctx.Err(); err != nil {
			summary.AddError("run aborted: " + err.Error())
			return
		}
		inj.injectLine(ctx, header.HeaderID, key, line, summary)
	}
}

func (inj *OrderInjector) createHeader(ctx context.Context, key string, first models.OrderLine) models.HeaderResult {
	customer := inj.resolver.Resolve(ctx, first.SourceDomain)

	payload := erp.DocumentRequest("vorh", []erp.OrderHeader{{
		Administration:    customer.Administration,
		DebtorNumber:      customer.DebtorNumber,
		RelationNumber:    customer.RelationNumber,
		Reference:         key,
		Description:       fmt.Sprintf("Order %s - %s", key, customer.Name),
		OrderDate:         time.Now().Format(ERPDateLayout),
		RequestedDelivery: FormatERPDate(first.DeliveryDate),
		Status:            orderStatusOpen,
		ExternalOrderCode: key,
	}})
	rawRequest := jsonString(payload)

	raw, err := inj.client.Post(ctx, erp.EndpointOrderHeaders, payload)
	if err != nil {
		return models.HeaderResult{
			ErrorMessage: err.Error(),
			RawRequest:   rawRequest,
			RawResponse:  apiErrorBody(err),
		}
	}

	id, err := erp.HeaderID(raw, "vorh", "vorh_num")
	if err != nil {
		return models.HeaderResult{
			ErrorMessage: err.Error(),
			RawRequest:   rawRequest,
			RawResponse:  string(raw),
		}
	}

	inj.log.WithFields(logrus.Fields{"group_key": key, "header_id": id}).Info("order header created")
	return models.HeaderResult{
		Success:     true,
		HeaderID:    id,
		RawRequest:  rawRequest,
		RawResponse: string(raw),
	}
}

func (inj *OrderInjector) injectLine(ctx context.Context, headerID, key string, line models.OrderLine, summary *models.InjectionSummary) {
	payload := erp.DocumentRequest("vorr", []erp.OrderRow{{
		HeaderNum:    headerID,
		ArticleCode:  line.ArticleCode,
		Description:  line.Description,
		Quantity:     line.Quantity,
		Unit:         inj.units.Normalize(line.Unit),
		UnitPrice:    line.UnitPrice,
		DeliveryDate: FormatERPDate(line.DeliveryDate),
	}})
	rawRequest := jsonString(payload)

	raw, err := inj.client.Post(ctx, erp.EndpointOrderLines, payload)
	if err != nil {
		status := inj.classifier.Classify(err.Error())
		if status == models.StatusBusinessRuleViolation {
			inj.sink.OnBusinessError(line.ArticleCode, err.Error())
		} else {
			inj.sink.OnInjectionError()
		}
		summary.Append(models.LineResult{
			ArticleCode:  line.ArticleCode,
			GroupKey:     key,
			Status:       status,
			ErrorMessage: err.Error(),
			HeaderID:     headerID,
			RawRequest:   rawRequest,
			RawResponse:  apiErrorBody(err),
		})
		return
	}

	summary.Append(models.LineResult{
		ArticleCode: line.ArticleCode,
		GroupKey:    key,
		Success:     true,
		Status:      models.StatusSuccess,
		HeaderID:    headerID,
		RawRequest:  rawRequest,
		RawResponse: string(raw),
	})
}

func (inj *OrderInjector) failGroup(summary *models.InjectionSummary, group []models.OrderLine, key, headerID, message string) {
	inj.log.WithFields(logrus.Fields{"group_key": key, "error": message}).Error("order group failed")
	for _, line := range group {
		summary.Append(models.LineResult{
			ArticleCode:  line.ArticleCode,
			GroupKey:     key,
			Status:       models.StatusTechnicalFailure,
			ErrorMessage: message,
			HeaderID:     headerID,
		})
		inj.sink.OnInjectionError()
	}
}
