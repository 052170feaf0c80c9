package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"erp-injector/internal/config"
	"erp-injector/internal/erp"
	"erp-injector/internal/models"
	"erp-injector/internal/repository"
	"erp-injector/internal/service"
	"erp-injector/internal/utils"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// InjectionTaskHandler executes queued injection runs against the ERP. One
// handler instance serves all runs; the ERP client is shared so the login
// session survives across tasks.
type InjectionTaskHandler struct {
	db      *sqlx.DB
	redis   *redis.Client
	cfg     *config.Config
	log     *logrus.Logger
	runRepo *repository.RunRepository
	client  *erp.Client
}

func NewInjectionTaskHandler(db *sqlx.DB, redis *redis.Client, cfg *config.Config) *InjectionTaskHandler {
	log := utils.GetLogger()

	client := erp.NewClient(erp.Config{
		BaseURL:  cfg.ERPBaseURL,
		AuthPath: cfg.ERPAuthPath,
		RestPath: cfg.ERPRestPath,
		Username: cfg.ERPUsername,
		Password: cfg.ERPPassword,
		APIKey:   cfg.ERPAPIKey,
		Timeout:  cfg.ERPTimeout,
	}, log)

	return &InjectionTaskHandler{
		db:      db,
		redis:   redis,
		cfg:     cfg,
		log:     log,
		runRepo: repository.NewRunRepository(db),
		client:  client,
	}
}

func (h *InjectionTaskHandler) Handle(ctx context.Context, task *asynq.Task) error {
	var payload models.InjectionTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	h.log.WithFields(logrus.Fields{
		"run_id":   payload.RunID,
		"run_code": payload.RunCode,
		"kind":     payload.Kind,
	}).Info("Starting injection run")

	run, err := h.runRepo.GetRunByID(payload.RunID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	// Check if run has been canceled
	if run.Status == models.RunStatusCanceled {
		h.log.WithField("run_code", payload.RunCode).Info("Run has been canceled, skipping")
		return nil // Don't return error, just skip processing
	}

	// Check if run is already completed or failed
	if run.Status == models.RunStatusCompleted || run.Status == models.RunStatusFailed {
		h.log.WithFields(logrus.Fields{
			"run_code": payload.RunCode,
			"status":   run.Status,
		}).Info("Run is already terminal, skipping")
		return nil
	}

	if err := h.runRepo.UpdateRunStatus(payload.RunID, models.RunStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark run processing: %w", err)
	}

	summary, runErr := h.execute(ctx, payload)

	if summary != nil {
		if err := h.runRepo.SaveSummary(payload.RunID, summary); err != nil {
			h.log.WithError(err).WithField("run_code", payload.RunCode).Error("Failed to save run summary")
			if runErr == nil {
				runErr = err
			}
		}
	}

	if runErr != nil {
		if err := h.runRepo.MarkRunFailed(payload.RunID, runErr.Error()); err != nil {
			h.log.WithError(err).WithField("run_code", payload.RunCode).Error("Failed to mark run failed")
		}
		return fmt.Errorf("injection run %s failed: %w", payload.RunCode, runErr)
	}

	if err := h.runRepo.UpdateRunStatus(payload.RunID, models.RunStatusCompleted); err != nil {
		return fmt.Errorf("failed to mark run completed: %w", err)
	}

	h.log.WithFields(logrus.Fields{
		"run_code":   payload.RunCode,
		"successful": summary.SuccessfulInjections,
		"duplicates": summary.DuplicatesFiltered,
		"failed":     summary.FailedInjections,
		"business":   summary.BusinessErrors,
	}).Info("Injection run completed")

	return nil
}

func (h *InjectionTaskHandler) execute(ctx context.Context, payload models.InjectionTaskPayload) (*models.InjectionSummary, error) {
	sink := service.NewMultiSink(
		service.NewLogSink(h.log),
		service.NewRedisProgress(h.redis, payload.RunCode),
	)

	fallback := models.CustomerInfo{
		Administration: h.cfg.ERPAdministration,
		DebtorNumber:   h.cfg.ERPDebtorNumber,
		RelationNumber: h.cfg.ERPRelationNumber,
		Name:           h.cfg.ERPCustomerName,
		Active:         true,
	}
	resolver := service.NewCustomerResolver(h.client, fallback, h.cfg.CustomerCacheTTL, h.log)
	validator := service.NewRuleValidator()
	units := service.NewUnitNormalizer(h.log)

	switch payload.Kind {
	case models.KindOrders:
		detector := service.NewOrderDuplicateDetector(h.client, h.log)
		inj := service.NewOrderInjector(h.client, resolver, validator, detector, nil, units, sink, h.log)
		return inj.Inject(ctx, payload.Orders)
	case models.KindQuotes:
		detector := service.NewQuoteDuplicateDetector(h.client, h.log)
		inj := service.NewQuoteInjector(h.client, resolver, validator, detector, nil, units, sink, h.log)
		return inj.Inject(ctx, payload.Quotes)
	case models.KindRevisions:
		detector := service.NewRevisionDuplicateDetector(h.client, h.log)
		inj := service.NewRevisionInjector(h.client, resolver, validator, detector, nil, sink, h.log)
		return inj.Inject(ctx, payload.Revisions)
	default:
		return nil, fmt.Errorf("unknown injection kind %q", payload.Kind)
	}
}
