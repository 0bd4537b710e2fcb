package api

import (
	"context"
	"log/slog"

	"github.com/AmmarAzhad/civils/internal/cache"
	"github.com/AmmarAzhad/civils/internal/engine"
	"github.com/AmmarAzhad/civils/internal/repo"
)

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	workflowRepo *repo.WorkflowRepo
	execRepo     *repo.ExecutionRepo
	workflows    *cache.WorkflowCache
	engine       *engine.Orchestrator
	logger       *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	WorkflowRepo *repo.WorkflowRepo
	ExecRepo     *repo.ExecutionRepo

	// Workflows — кэшированный источник workflows. Nil допустим:
	// инвалидация кэша тогда пропускается.
	Workflows *cache.WorkflowCache

	Engine *engine.Orchestrator
	Logger *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		workflowRepo: cfg.WorkflowRepo,
		execRepo:     cfg.ExecRepo,
		workflows:    cfg.Workflows,
		engine:       cfg.Engine,
		logger:       cfg.Logger,
	}
}

// invalidateWorkflow выкидывает workflow из кэша после записи.
func (h *Handler) invalidateWorkflow(ctx context.Context, id int64) {
	if h.workflows != nil {
		h.workflows.Invalidate(ctx, id)
	}
}
