package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AmmarAzhad/civils/internal/domain"
	"github.com/AmmarAzhad/civils/internal/telemetry"
)

// StepOutcome — итог выполнения одного шага.
type StepOutcome struct {
	// Success — завершились ли все tasks шага успешно.
	Success bool

	// FailureMessage — сообщение об упавшем task (пусто при успехе).
	// Называет один task: для sync — первый упавший, для async —
	// первый завершившийся с ошибкой. Если одновременно упало
	// несколько async tasks, выбор между ними недетерминирован.
	FailureMessage string
}

// StepRunner выполняет один шаг workflow.
//
// Внутри шага порядок строго sequential-then-parallel:
// сначала все sync tasks последовательно (по возрастанию task ID,
// short-circuit на первом падении), затем все async tasks
// параллельно с полным барьером — шаг завершается только когда
// завершились все async tasks, падение одного не отменяет соседние.
type StepRunner struct {
	executor Executor
	logger   *slog.Logger
}

// NewStepRunner создаёт StepRunner.
func NewStepRunner(executor Executor, logger *slog.Logger) *StepRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &StepRunner{
		executor: executor,
		logger:   logger,
	}
}

// taskResult — результат одного async task вместе с самим task.
type taskResult struct {
	task    domain.Task
	outcome Outcome
}

// RunStep выполняет все tasks группы и эмитит per-task updates в sink.
//
// Ошибка (error) возвращается только при мёртвом sink — падение
// task приходит как StepOutcome с Success=false. Записей в store
// RunStep не делает: персистентность — дело оркестратора.
func (r *StepRunner) RunStep(ctx context.Context, group SequenceGroup, sink Sink, rc *RunContext) (StepOutcome, error) {
	var syncTasks, asyncTasks []domain.Task
	for _, task := range group.Tasks {
		if task.Mode == domain.ModeAsync {
			asyncTasks = append(asyncTasks, task)
		} else {
			syncTasks = append(syncTasks, task)
		}
	}

	// Sync tasks: последовательно, short-circuit на первом падении.
	for i := range syncTasks {
		task := &syncTasks[i]

		if err := sink.Emit(ctx, taskUpdate(rc, task, "Starting task "+task.Name)); err != nil {
			return StepOutcome{}, err
		}

		outcome := r.safeExecute(ctx, task, rc)

		if err := sink.Emit(ctx, taskUpdate(rc, task, outcome.Message)); err != nil {
			return StepOutcome{}, err
		}

		if !outcome.Success {
			r.logger.Warn("sync task failed",
				"execution_id", rc.ExecutionID,
				"task_id", task.ID,
				"task_name", task.Name,
				"sequence", group.Sequence,
			)
			return StepOutcome{
				Success:        false,
				FailureMessage: fmt.Sprintf("Workflow failed at task '%s': %s", task.Name, outcome.Message),
			}, nil
		}
	}

	if len(asyncTasks) == 0 {
		return StepOutcome{Success: true}, nil
	}

	// Async tasks: параллельный запуск, полный барьер.
	batch := domain.StatusUpdate{
		ExecutionID: rc.ExecutionID,
		WorkflowID:  rc.Workflow.ID,
		Status:      domain.StatusRunning,
		Message:     fmt.Sprintf("Starting %d parallel tasks for sequence %d...", len(asyncTasks), group.Sequence),
	}
	if err := sink.Emit(ctx, batch); err != nil {
		return StepOutcome{}, err
	}

	results := make(chan taskResult)
	for i := range asyncTasks {
		go func(task domain.Task) {
			results <- taskResult{task: task, outcome: r.safeExecute(ctx, &task, rc)}
		}(asyncTasks[i])
	}

	// Result updates эмитятся в порядке завершения, не запуска.
	// Даже при мёртвом sink канал дочитывается до конца, чтобы
	// не оставить заблокированные горутины.
	step := StepOutcome{Success: true}
	var emitErr error
	for range asyncTasks {
		res := <-results

		if emitErr == nil {
			emitErr = sink.Emit(ctx, taskUpdate(rc, &res.task, res.outcome.Message))
		}

		if !res.outcome.Success && step.Success {
			r.logger.Warn("async task failed",
				"execution_id", rc.ExecutionID,
				"task_id", res.task.ID,
				"task_name", res.task.Name,
				"sequence", group.Sequence,
			)
			step = StepOutcome{
				Success:        false,
				FailureMessage: fmt.Sprintf("Workflow failed at parallel task '%s': %s", res.task.Name, res.outcome.Message),
			}
		}
	}

	if emitErr != nil {
		return StepOutcome{}, emitErr
	}
	return step, nil
}

// safeExecute вызывает executor, преобразуя панику в failed Outcome.
// Паника в одном параллельном task не должна ронять ни соседние
// tasks, ни процесс целиком.
func (r *StepRunner) safeExecute(ctx context.Context, task *domain.Task, rc *RunContext) (out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("task panicked",
				"execution_id", rc.ExecutionID,
				"task_id", task.ID,
				"task_name", task.Name,
				"panic", rec,
			)
			out = Outcome{
				Success: false,
				Message: fmt.Sprintf("task %s panicked: %v", task.Name, rec),
			}
		}
		telemetry.TasksExecuted.WithLabelValues(string(task.Mode), outcomeLabel(out.Success)).Inc()
	}()

	return r.executor.Execute(ctx, task, rc)
}

// taskUpdate строит StatusUpdate про конкретный task.
func taskUpdate(rc *RunContext, task *domain.Task, message string) domain.StatusUpdate {
	return domain.StatusUpdate{
		ExecutionID: rc.ExecutionID,
		WorkflowID:  rc.Workflow.ID,
		Status:      domain.StatusRunning,
		TaskID:      task.ID,
		TaskName:    task.Name,
		Message:     message,
	}
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
