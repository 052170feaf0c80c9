package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"erp-injector/internal/erp"
	"erp-injector/internal/models"
)

// RevisionInjector creates BOM revisions through the s_create_revision
// service. Unlike orders and quotes there is no separate line phase: each
// revision line is its own unit of work, but a missing source BOM is a hard
// prerequisite failure.
type RevisionInjector struct {
	client     ERPClient
	resolver   *CustomerResolver
	validator  *RuleValidator
	detector   *RevisionDuplicateDetector
	classifier ErrorClassifier
	sink       ProgressSink
	log        *logrus.Logger
}

func NewRevisionInjector(
	client ERPClient,
	resolver *CustomerResolver,
	validator *RuleValidator,
	detector *RevisionDuplicateDetector,
	classifier ErrorClassifier,
	sink ProgressSink,
	log *logrus.Logger,
) *RevisionInjector {
	if classifier == nil {
		classifier = NewKeywordClassifier()
	}
	if sink == nil {
		sink = NewLogSink(log)
	}
	return &RevisionInjector{
		client:     client,
		resolver:   resolver,
		validator:  validator,
		detector:   detector,
		classifier: classifier,
		sink:       sink,
		log:        log,
	}
}

func (inj *RevisionInjector) Inject(ctx context.Context, lines []models.RevisionLine) (*models.InjectionSummary, error) {
	summary := models.NewInjectionSummary(models.KindRevisions)
	defer summary.Finish()

	valid := inj.filterValid(lines, summary)
	groups, keys := groupRevisionLines(valid)
	summary.TotalGroups = len(keys)

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			summary.AddError("run aborted: " + err.Error())
			return summary, err
		}
		for _, line := range groups[key] {
			inj.processLine(ctx, key, line, summary)
		}
	}
	return summary, nil
}

func (inj *RevisionInjector) filterValid(lines []models.RevisionLine, summary *models.InjectionSummary) []models.RevisionLine {
	valid := make([]models.RevisionLine, 0, len(lines))
	for _, line := range lines {
		violations := inj.validator.ValidateRevisionLine(line)
		if len(violations) == 0 {
			valid = append(valid, line)
			continue
		}
		detail := strings.Join(violations, "; ")
		summary.BusinessErrors++
		summary.AddError(fmt.Sprintf("revision line %s: %s", line.ArticleCode, detail))
		inj.sink.OnBusinessError(line.ArticleCode, detail)
		inj.log.WithFields(logrus.Fields{
			"article_code": line.ArticleCode,
			"violations":   violations,
		}).Warn("revision line rejected by rule validation")
	}
	return valid
}

func groupRevisionLines(lines []models.RevisionLine) (map[string][]models.RevisionLine, []string) {
	groups := make(map[string][]models.RevisionLine)
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

func (inj *RevisionInjector) processLine(ctx context.Context, key string, line models.RevisionLine, summary *models.InjectionSummary) {
	inj.sink.OnProgress(fmt.Sprintf("Processing revision %s", key))

	customer := inj.resolver.Resolve(ctx, line.SourceDomain)
	targetID := line.TargetBomID()
	sourceID := line.SourceBomID()

	found, err := inj.detector.TargetExists(ctx, customer.Administration, targetID)
	if err != nil {
		inj.fail(summary, line, key, models.StatusTechnicalFailure, fmt.Sprintf("duplicate check failed: %v", err))
		return
	}
	if found {
		summary.Append(models.LineResult{
			ArticleCode: line.ArticleCode,
			GroupKey:    key,
			Success:     true,
			Status:      models.StatusDuplicateSkipped,
			HeaderID:    targetID,
		})
		inj.sink.OnDuplicate(1)
		inj.sink.OnProgress(fmt.Sprintf("Revision %s already exists, skipped", targetID))
		return
	}

	sourceFound, err := inj.detector.SourceExists(ctx, customer.Administration, sourceID)
	if err != nil {
		inj.fail(summary, line, key, models.StatusTechnicalFailure, fmt.Sprintf("source check failed: %v", err))
		return
	}
	if !sourceFound {
		inj.fail(summary, line, key, models.StatusSourceNotFound, fmt.Sprintf("source BOM %s not found", sourceID))
		return
	}

	payload := erp.RevisionRequest(erp.PartListRevision{
		NewRevisionID:  targetID,
		Description:    line.Description,
		DrawingNumber:  line.DrawingNumber,
		CopyMaterials:  true,
		CopyOperations: true,
		CopyDocuments:  true,
	})
	rawRequest := jsonString(payload)

	endpoint := erp.RevisionServiceEndpoint(customer.Administration, sourceID)
	raw, err := inj.client.Put(ctx, endpoint, payload)
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
			RawRequest:   rawRequest,
			RawResponse:  apiErrorBody(err),
		})
		return
	}

	headerID := targetID
	if id, idErr := erp.HeaderID(raw, "stlh", "stlh_num"); idErr == nil {
		headerID = id
	}

	inj.log.WithFields(logrus.Fields{"source": sourceID, "target": targetID}).Info("bom revision created")
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

func (inj *RevisionInjector) fail(summary *models.InjectionSummary, line models.RevisionLine, key string, status models.LineStatus, message string) {
	inj.log.WithFields(logrus.Fields{"group_key": key, "error": message}).Error("revision failed")
	summary.Append(models.LineResult{
		ArticleCode:  line.ArticleCode,
		GroupKey:     key,
		Status:       status,
		ErrorMessage: message,
	})
	inj.sink.OnInjectionError()
}
