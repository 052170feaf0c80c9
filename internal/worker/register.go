package worker

import (
	"erp-injector/internal/config"
	"erp-injector/internal/models"

	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

func RegisterHandlers(mux *asynq.ServeMux, db *sqlx.DB, redis *redis.Client, cfg *config.Config) {
	// Create injection task handler
	injectionHandler := NewInjectionTaskHandler(db, redis, cfg)

	// Register task handlers
	mux.HandleFunc(models.TaskTypeInjectionRun, injectionHandler.Handle)
}
