package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/AmmarAzhad/civils/internal/domain"
)

// Outcome — результат выполнения одного task.
//
// Падение task — это не ошибка (error), а обычные данные: Outcome
// с Success=false. Сбои самой работы и паники преобразуются
// в failed Outcome на границе executor'а, поэтому сбой одного
// параллельного task никогда не роняет соседние tasks шага.
type Outcome struct {
	// Success — завершился ли task успешно.
	Success bool

	// Message — человекочитаемое сообщение о результате.
	// Для упавшего task сохраняется дословно в итоговом
	// сообщении запуска.
	Message string
}

// Executor — исполнитель работы task. Что именно делает task,
// engine не знает и не интерпретирует.
//
// Реализация получает task и execution-scoped ресурсы
// через RunContext. Время выполнения ограничивается только ctx:
// engine не навязывает собственный таймаут на task.
type Executor interface {
	Execute(ctx context.Context, task *domain.Task, rc *RunContext) Outcome
}

// ExecutorFunc — адаптер функции к интерфейсу Executor.
type ExecutorFunc func(ctx context.Context, task *domain.Task, rc *RunContext) Outcome

// Execute вызывает f.
func (f ExecutorFunc) Execute(ctx context.Context, task *domain.Task, rc *RunContext) Outcome {
	return f(ctx, task, rc)
}

// SimulatedExecutor — executor по умолчанию: имитирует работу
// задержкой и всегда завершается успешно. Используется, пока
// у task нет реального провайдера работы.
type SimulatedExecutor struct {
	// Delay — длительность имитируемой работы (default: 1s).
	Delay time.Duration
}

// Execute имитирует работу task.
func (e *SimulatedExecutor) Execute(ctx context.Context, task *domain.Task, rc *RunContext) Outcome {
	delay := e.Delay
	if delay <= 0 {
		delay = time.Second
	}

	rc.Logger.Debug("executing task",
		"task_id", task.ID,
		"task_name", task.Name,
		"mode", task.Mode,
	)

	select {
	case <-time.After(delay):
	case <-ctx.Done():
		return Outcome{
			Success: false,
			Message: fmt.Sprintf("Task %s interrupted: %v", task.Name, ctx.Err()),
		}
	}

	return Outcome{
		Success: true,
		Message: fmt.Sprintf("Task %s completed successfully.", task.Name),
	}
}
