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

// QuoteInjector mirrors the order pipeline for price quotes: one vofh
// header per RFQ number, vofr lines injected sequentially underneath it.
type QuoteInjector struct {
	client     ERPClient
	resolver   *CustomerResolver
	validator  *RuleValidator
	detector   *QuoteDuplicateDetector
	classifier ErrorClassifier
	units      *UnitNormalizer
	sink       ProgressSink
	log        *logrus.Logger
}

func NewQuoteInjector(
	client ERPClient,
	resolver *CustomerResolver,
	validator *RuleValidator,
	detector *QuoteDuplicateDetector,
	classifier ErrorClassifier,
	units *UnitNormalizer,
	sink ProgressSink,
	log *logrus.Logger,
) *QuoteInjector {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	if sink == nil {
		sink = NewLogSink(log)
	}
	return &QuoteInjector{
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

func (inj *QuoteInjector) Inject(ctx context.Context, lines []models.QuoteLine) (*models.InjectionSummary, error) {
	summary := models.NewInjectionSummary(models.KindQuotes)
	defer summary.Finish()

	valid := inj.filterValid(lines, summary)
	groups, keys := groupQuoteLines(valid)
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

func (inj *QuoteInjector) filterValid(lines []models.QuoteLine, summary *models.InjectionSummary) []models.QuoteLine {
	valid := make([]models.QuoteLine, 0, len(lines))
	for _, line := range lines {
		violations := inj.validator.ValidateQuoteLine(line)
		if len(violations) == 0 {
			valid = append(valid, line)
			continue
		}
		detail := strings.Join(violations, "; ")
		summary.BusinessErrors++
		summary.AddError(fmt.Sprintf("quote line %s (RFQ %s): %s", line.ArticleCode, line.RFQNumber, detail))
		inj.sink.OnBusinessError(line.ArticleCode, detail)
		inj.log.WithFields(logrus.Fields{
			"article_code": line.ArticleCode,
			"rfq_number":   line.RFQNumber,
			"violations":   violations,
		}).Warn("quote line rejected by rule validation")
	}
	return valid
}

func groupQuoteLines(lines []models.QuoteLine) (map[string][]models.QuoteLine, []string) {
	groups := make(map[string][]models.QuoteLine)
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

func (inj *QuoteInjector) processGroup(ctx context.Context, key string, group []models.QuoteLine, summary *models.InjectionSummary) {
	inj.sink.OnProgress(fmt.Sprintf("Processing quote %s (%d lines)", key, len(group)))

	found, existingID, err := inj.detector.Exists(ctx, key)
	if err != nil {
		inj.failGroup(summary, group, key, fmt.Sprintf("duplicate check failed: %v", err))
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
		inj.sink.OnProgress(fmt.Sprintf("Quote %s already exists as %s, skipped", key, existingID))
		return
	}

	header := inj.createHeader(ctx, key, group[0])
	if !header.Success {
		inj.log.WithFields(logrus.Fields{"group_key": key, "error": header.ErrorMessage}).
			Error("quote header creation failed")
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

func (inj *QuoteInjector) createHeader(ctx context.Context, key string, first models.QuoteLine) models.HeaderResult {
	customer := inj.resolver.Resolve(ctx, first.SourceDomain)

	payload := erp.DocumentRequest("vofh", []erp.QuoteHeader{{
		Administration:    customer.Administration,
		DebtorNumber:      customer.DebtorNumber,
		RelationNumber:    customer.RelationNumber,
		ExternalReference: key,
		Description:       fmt.Sprintf("Quote %s - %s", key, customer.Name),
		QuoteDate:         time.Now().Format(ERPDateLayout),
		Status:            quoteStatusOpen,
	}})
	rawRequest := jsonString(payload)

	raw, err := inj.client.Post(ctx, erp.EndpointQuoteHeaders, payload)
	if err != nil {
		return models.HeaderResult{
			ErrorMessage: err.Error(),
			RawRequest:   rawRequest,
			RawResponse:  apiErrorBody(err),
		}
	}

	id, err := erp.HeaderID(raw, "vofh", "vofh_num")
	if err != nil {
		return models.HeaderResult{
			ErrorMessage: err.Error(),
			RawRequest:   rawRequest,
			RawResponse:  string(raw),
		}
	}

	inj.log.WithFields(logrus.Fields{"group_key": key, "header_id": id}).Info("quote header created")
	return models.HeaderResult{
		Success:     true,
		HeaderID:    id,
		RawRequest:  rawRequest,
		RawResponse: string(raw),
	}
}

func (inj *QuoteInjector) injectLine(ctx context.Context, headerID, key string, line models.QuoteLine, summary *models.InjectionSummary) {
	payload := erp.DocumentRequest("vofr", []erp.QuoteRow{{
		HeaderNum:    headerID,
		ArticleCode:  line.ArticleCode,
		Description:  line.Description,
		Quantity:     line.Quantity,
		Unit:         inj.units.Normalize(line.Unit),
		UnitPrice:    line.UnitPrice,
		DeliveryDate: FormatERPDate(line.DeliveryDate),
	}})
	rawRequest := jsonString(payload)

	raw, err := inj.client.Post(ctx, erp.EndpointQuoteLines, payload)
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

func (inj *QuoteInjector) failGroup(summary *models.InjectionSummary, group []models.QuoteLine, key, message string) {
	inj.log.WithFields(logrus.Fields{"group_key": key, "error": message}).Error("quote group failed")
	for _, line := range group {
		summary.Append(models.LineResult{
			ArticleCode:  line.ArticleCode,
			GroupKey:     key,
			Status:       models.StatusTechnicalFailure,
			ErrorMessage: message,
		})
		inj.sink.OnInjectionError()
	}
}
