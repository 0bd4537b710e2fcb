package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/AmmarAzhad/civils/internal/domain"
	"github.com/AmmarAzhad/civils/internal/repo"
	"github.com/AmmarAzhad/civils/internal/telemetry"
)

// WorkflowSource отдаёт определения workflows.
// Реализуется repo.WorkflowRepo и cache.WorkflowCache.
type WorkflowSource interface {
	GetByID(ctx context.Context, id int64) (*domain.Workflow, error)
}

// ExecutionStore персистит executions и их переходы статусов.
// Реализуется repo.ExecutionRepo.
type ExecutionStore interface {
	Create(ctx context.Context, e *domain.Execution) error
	UpdateStatus(ctx context.Context, e *domain.Execution, status domain.ExecutionStatus, message string) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Execution, error)
}

// RunContext — контекст одного запуска workflow, передаётся
// executor'ам. Живёт от создания execution до терминального статуса.
type RunContext struct {
	ExecutionID uuid.UUID
	Workflow    *domain.Workflow
	Store       ExecutionStore
	Logger      *slog.Logger
}

// Config — зависимости оркестратора.
type Config struct {
	Workflows WorkflowSource
	Store     ExecutionStore

	// Executor выполняет отдельные tasks. По умолчанию SimulatedExecutor.
	Executor Executor

	// Events — необязательный sink для fan-out updates (например, в MQ).
	// Ошибки канального sink фатальны для запуска, ошибки Events — нет:
	// это ответственность самого sink (см. mq.EventSink).
	Events Sink

	Logger *slog.Logger
}

// Orchestrator управляет полным жизненным циклом executions:
// загрузка определения, группировка по sequence, прогон шагов
// через StepRunner, персистентность статусов и стрим updates.
type Orchestrator struct {
	workflows WorkflowSource
	store     ExecutionStore
	runner    *StepRunner
	events    Sink
	logger    *slog.Logger
}

// New создаёт Orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.Executor == nil {
		cfg.Executor = &SimulatedExecutor{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Orchestrator{
		workflows: cfg.Workflows,
		store:     cfg.Store,
		runner:    NewStepRunner(cfg.Executor, cfg.Logger),
		events:    cfg.Events,
		logger:    cfg.Logger,
	}
}

// ExecuteWorkflow запускает workflow и возвращает канал live updates.
//
// Канал небуферизованный: выполнение продвигается в темпе читателя
// и закрывается после терминального update. Последний update перед
// закрытием всегда терминальный (COMPLETED или FAILED).
func (o *Orchestrator) ExecuteWorkflow(ctx context.Context, workflowID int64) <-chan domain.StatusUpdate {
	ch := make(chan domain.StatusUpdate)

	go func() {
		defer close(ch)

		var sink Sink = NewChannelSink(ch)
		if o.events != nil {
			sink = MultiSink{sink, o.events}
		}

		o.run(ctx, workflowID, sink)
	}()

	return ch
}

// run выполняет один запуск целиком. Все пути выхода ведут к
// терминальному update; созданная запись execution никогда не
// остаётся в нетерминальном статусе (best effort при отказе store).
func (o *Orchestrator) run(ctx context.Context, workflowID int64, sink Sink) {
	workflow, err := o.workflows.GetByID(ctx, workflowID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		o.logger.Error("failed to load workflow", "workflow_id", workflowID, "error", err)
		o.emit(ctx, sink, domain.StatusUpdate{
			WorkflowID: workflowID,
			Status:     domain.StatusFailed,
			Message:    fmt.Sprintf("internal error during execution: %v", err),
		})
		return
	}

	// Несуществующий workflow и workflow без tasks неразличимы
	// для вызывающего: запись execution не создаётся.
	if workflow == nil || !workflow.HasTasks() {
		o.emit(ctx, sink, domain.StatusUpdate{
			WorkflowID: workflowID,
			Status:     domain.StatusFailed,
			Message:    fmt.Sprintf("Workflow definition '%d' not found or has no tasks.", workflowID),
		})
		return
	}

	exec := domain.NewExecution(uuid.New(), workflow.ID)

	if err := o.store.Create(ctx, exec); err != nil {
		o.logger.Error("failed to create execution record",
			"execution_id", exec.ID,
			"workflow_id", workflow.ID,
			"error", err,
		)
		o.emit(ctx, sink, domain.StatusUpdate{
			ExecutionID: exec.ID,
			WorkflowID:  workflow.ID,
			Status:      domain.StatusFailed,
			Message:     fmt.Sprintf("internal error during execution: %v", err),
		})
		telemetry.ExecutionsFailed.Inc()
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			o.logger.Error("panic during execution",
				"execution_id", exec.ID,
				"workflow_id", workflow.ID,
				"panic", rec,
			)
			o.failInternal(ctx, sink, exec, fmt.Errorf("%v", rec))
		}
	}()

	rc := &RunContext{
		ExecutionID: exec.ID,
		Workflow:    workflow,
		Store:       o.store,
		Logger:      o.logger.With("execution_id", exec.ID, "workflow_id", workflow.ID),
	}

	o.emit(ctx, sink, domain.StatusUpdate{
		ExecutionID: exec.ID,
		WorkflowID:  workflow.ID,
		Status:      domain.StatusPending,
		Message:     "Workflow execution initiated.",
	})

	if err := o.store.UpdateStatus(ctx, exec, domain.StatusRunning, "Execution started."); err != nil {
		o.failInternal(ctx, sink, exec, err)
		return
	}
	o.emit(ctx, sink, domain.StatusUpdate{
		ExecutionID: exec.ID,
		WorkflowID:  workflow.ID,
		Status:      domain.StatusRunning,
		Message:     "Workflow execution started.",
	})

	telemetry.ExecutionsStarted.Inc()
	rc.Logger.Info("execution started", "tasks", len(workflow.Tasks))

	finalStatus := domain.StatusCompleted
	finalMessage := "Workflow execution completed successfully."

	for _, group := range GroupBySequence(workflow.Tasks) {
		step, err := o.runner.RunStep(ctx, group, sink, rc)
		if err != nil {
			// Мёртвый sink: читатель ушёл. Дальше выполнять нечего,
			// но запись execution всё равно закрывается.
			o.failInternal(ctx, sink, exec, err)
			return
		}
		if !step.Success {
			finalStatus = domain.StatusFailed
			finalMessage = step.FailureMessage
			break
		}
	}

	if err := o.store.UpdateStatus(ctx, exec, finalStatus, finalMessage); err != nil {
		o.failInternal(ctx, sink, exec, err)
		return
	}

	o.emit(ctx, sink, domain.StatusUpdate{
		ExecutionID: exec.ID,
		WorkflowID:  workflow.ID,
		Status:      finalStatus,
		Message:     finalMessage,
	})

	if finalStatus == domain.StatusCompleted {
		telemetry.ExecutionsCompleted.Inc()
		rc.Logger.Info("execution completed")
	} else {
		telemetry.ExecutionsFailed.Inc()
		rc.Logger.Warn("execution failed", "message", finalMessage)
	}
}

// failInternal закрывает execution статусом FAILED из-за внутреннего
// сбоя (паника, отказ store, мёртвый sink). Запись в store идёт с
// context.WithoutCancel: уход читателя не повод оставить запись
// висеть в RUNNING.
func (o *Orchestrator) failInternal(ctx context.Context, sink Sink, exec *domain.Execution, cause error) {
	message := fmt.Sprintf("internal error during execution: %v", cause)

	if err := o.store.UpdateStatus(context.WithoutCancel(ctx), exec, domain.StatusFailed, message); err != nil {
		o.logger.Error("failed to persist FAILED status",
			"execution_id", exec.ID,
			"error", err,
		)
	}

	o.emit(ctx, sink, domain.StatusUpdate{
		ExecutionID: exec.ID,
		WorkflowID:  exec.WorkflowID,
		Status:      domain.StatusFailed,
		Message:     message,
	})

	telemetry.ExecutionsFailed.Inc()
}

// emit — best-effort отправка update: при мёртвом sink терять уже нечего.
func (o *Orchestrator) emit(ctx context.Context, sink Sink, u domain.StatusUpdate) {
	if err := sink.Emit(ctx, u); err != nil {
		o.logger.Debug("dropped status update", "execution_id", u.ExecutionID, "error", err)
	}
}

// GetStatus возвращает execution по строковому ID.
func (o *Orchestrator) GetStatus(ctx context.Context, rawID string) (*domain.Execution, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExecutionID, rawID)
	}

	exec, err := o.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
		}
		return nil, fmt.Errorf("get execution %s: %w", id, err)
	}
	return exec, nil
}
