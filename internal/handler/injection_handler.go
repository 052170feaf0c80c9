package handler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"erp-injector/internal/config"
	"erp-injector/internal/models"
	"erp-injector/internal/repository"
	"erp-injector/internal/service"
	"erp-injector/internal/utils"
)

type InjectionHandler struct {
	runRepo       *repository.RunRepository
	reportService *service.ReportService
	asynqClient   *asynq.Client
	redis         *redis.Client
	validate      *validator.Validate
	cfg           *config.Config
}

func NewInjectionHandler(
	runRepo *repository.RunRepository,
	reportService *service.ReportService,
	asynqClient *asynq.Client,
	redisClient *redis.Client,
	cfg *config.Config,
) *InjectionHandler {
	return &InjectionHandler{
		runRepo:       runRepo,
		reportService: reportService,
		asynqClient:   asynqClient,
		redis:         redisClient,
		validate:      validator.New(),
		cfg:           cfg,
	}
}

// CreateInjection accepts a batch of extracted line records and queues one
// injection run per non-empty entity kind.
func (h *InjectionHandler) CreateInjection(c *fiber.Ctx) error {
	var req models.InjectionRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	if err := h.validate.Struct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Request validation failed", err)
	}

	if req.Empty() {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "At least one of orders, quotes or revisions is required", nil)
	}

	if h.asynqClient == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Background job processing is not available (Redis not connected)", nil)
	}

	type queued struct {
		Run   *models.InjectionRun `json:"run"`
		JobID string               `json:"job_id"`
	}
	var runs []queued

	enqueue := func(kind string, totalLines int, fill func(*models.InjectionTaskPayload)) error {
		run := &models.InjectionRun{
			RunCode:    fmt.Sprintf("INJ-%s", uuid.New().String()[:8]),
			Kind:       kind,
			Status:     models.RunStatusQueued,
			TotalLines: totalLines,
		}
		if err := h.runRepo.CreateRun(run); err != nil {
			return err
		}

		payload := models.InjectionTaskPayload{
			RunID:   run.ID,
			RunCode: run.RunCode,
			Kind:    kind,
		}
		fill(&payload)

		encoded, err := json.Marshal(payload)
		if err != nil {
			return err
		}

		info, err := h.asynqClient.Enqueue(asynq.NewTask(models.TaskTypeInjectionRun, encoded))
		if err != nil {
			return err
		}

		runs = append(runs, queued{Run: run, JobID: info.ID})
		return nil
	}

	if len(req.Orders) > 0 {
		if err := enqueue(models.KindOrders, len(req.Orders), func(p *models.InjectionTaskPayload) { p.Orders = req.Orders }); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue order injection", err)
		}
	}
	if len(req.Quotes) > 0 {
		if err := enqueue(models.KindQuotes, len(req.Quotes), func(p *models.InjectionTaskPayload) { p.Quotes = req.Quotes }); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue quote injection", err)
		}
	}
	if len(req.Revisions) > 0 {
		if err := enqueue(models.KindRevisions, len(req.Revisions), func(p *models.InjectionTaskPayload) { p.Revisions = req.Revisions }); err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to queue revision injection", err)
		}
	}

	return utils.SuccessResponse(c, "Injection runs queued", fiber.Map{
		"runs": runs,
	})
}

func (h *InjectionHandler) GetRuns(c *fiber.Ctx) error {
	params := utils.GetPaginationParams(c)
	offset := utils.GetOffset(params.Page, params.Limit)

	runs, total, err := h.runRepo.GetRuns(params.Limit, offset)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve runs", err)
	}

	pagination := utils.CalculatePagination(params.Page, params.Limit, int64(total))
	return utils.PaginatedResponseBuilder(c, "Runs retrieved successfully", fiber.Map{
		"runs": runs,
	}, pagination)
}

func (h *InjectionHandler) GetRun(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid run ID", err)
	}

	run, err := h.runRepo.GetRunByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Run not found", err)
	}

	results, err := h.runRepo.GetResultsByRun(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve run results", err)
	}

	return utils.SuccessResponse(c, "Run retrieved successfully", fiber.Map{
		"run":     run,
		"results": results,
	})
}

// GetProgress serves the live counters the worker publishes to redis while
// a run is still injecting.
func (h *InjectionHandler) GetProgress(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid run ID", err)
	}

	run, err := h.runRepo.GetRunByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Run not found", err)
	}

	if h.redis == nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Progress tracking is not available (Redis not connected)", nil)
	}

	progress, err := service.NewRedisProgress(h.redis, run.RunCode).Snapshot(c.Context())
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to read progress", err)
	}

	return utils.SuccessResponse(c, "Progress retrieved successfully", fiber.Map{
		"run":      run,
		"progress": progress,
	})
}

func (h *InjectionHandler) CancelRun(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid run ID", err)
	}

	run, err := h.runRepo.GetRunByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Run not found", err)
	}

	if run.Status != models.RunStatusQueued {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Only queued runs can be canceled", nil)
	}

	if err := h.runRepo.UpdateRunStatus(id, models.RunStatusCanceled); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cancel run", err)
	}

	return utils.SuccessResponse(c, "Run canceled", nil)
}

func (h *InjectionHandler) ExportRun(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid run ID", err)
	}

	run, err := h.runRepo.GetRunByID(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Run not found", err)
	}

	results, err := h.runRepo.GetResultsByRun(id)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to retrieve run results", err)
	}

	if err := os.MkdirAll(h.cfg.ExportPath, 0o755); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to prepare export directory", err)
	}

	exportFileName := fmt.Sprintf("run_%s_%s.xlsx", run.RunCode, time.Now().Format("20060102_150405"))
	exportPath := filepath.Join(h.cfg.ExportPath, exportFileName)

	if err := h.reportService.ExportRunResults(run, results, exportPath); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export run", err)
	}

	return c.Download(exportPath, exportFileName)
}
