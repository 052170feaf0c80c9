package router

import (
	"erp-injector/internal/config"
	"erp-injector/internal/handler"
	"erp-injector/internal/middleware"
	"erp-injector/internal/repository"
	"erp-injector/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func SetupAPIRoutes(
	router fiber.Router,
	db *sqlx.DB,
	redis *redis.Client,
	cfg *config.Config,
) {
	// Initialize repositories
	runRepo := repository.NewRunRepository(db)

	// Initialize services
	authService := service.NewAuthService(cfg)
	reportService := service.NewReportService()

	// Initialize Asynq client (optional - only if Redis is available)
	var asynqClient *asynq.Client
	if redis != nil {
		asynqClient = asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.AsynqRedisAddr,
			Password: cfg.AsynqRedisPassword,
			DB:       cfg.AsynqRedisDB,
		})
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	injectionHandler := handler.NewInjectionHandler(runRepo, reportService, asynqClient, redis, cfg)

	// Public routes
	auth := router.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := router.Group("", middleware.AuthMiddleware(cfg))

	injections := protected.Group("/injections")
	injections.Post("/", injectionHandler.CreateInjection)
	injections.Get("/", injectionHandler.GetRuns)
	injections.Get("/:id", injectionHandler.GetRun)
	injections.Get("/:id/progress", injectionHandler.GetProgress)
	injections.Post("/:id/cancel", injectionHandler.CancelRun)
	injections.Get("/:id/export", injectionHandler.ExportRun)
}
