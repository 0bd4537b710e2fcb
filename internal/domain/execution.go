package domain

import (
	"time"

	"github.com/google/uuid"
)

// Execution — один запуск workflow.
//
// Execution создаётся при старте запуска (ID генерирует engine,
// не вызывающий) и мутируется только оркестратором своего запуска.
// Запись — единственный источник истины о том, чем закончился
// запуск, независимо от того, слушает ли кто-то поток updates.
// Engine никогда не удаляет executions.
type Execution struct {
	// ID — уникальный идентификатор execution.
	ID uuid.UUID `json:"id"`

	// WorkflowID — ссылка на выполняемый workflow.
	WorkflowID int64 `json:"workflow_id"`

	// Status — текущий статус выполнения.
	Status ExecutionStatus `json:"status"`

	// LastMessage — последнее человекочитаемое сообщение
	// (дублирует message последнего значимого StatusUpdate).
	LastMessage string `json:"last_message,omitempty"`

	// CreatedAt — время создания execution.
	CreatedAt time.Time `json:"created_at"`

	// FinishedAt — время перехода в терминальный статус.
	// Nil, пока execution не завершён.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewExecution создаёт execution в статусе PENDING.
func NewExecution(id uuid.UUID, workflowID int64) *Execution {
	return &Execution{
		ID:         id,
		WorkflowID: workflowID,
		Status:     StatusPending,
		CreatedAt:  time.Now(),
	}
}

// Transition переводит execution в новый статус.
// Пустое message сохраняет предыдущее LastMessage.
// При переходе в терминальный статус проставляется FinishedAt.
func (e *Execution) Transition(status ExecutionStatus, message string) {
	e.Status = status
	if message != "" {
		e.LastMessage = message
	}
	if status.IsTerminal() && e.FinishedAt == nil {
		now := time.Now()
		e.FinishedAt = &now
	}
}

// IsFinished возвращает true, если execution в терминальном статусе.
func (e *Execution) IsFinished() bool {
	return e.Status.IsTerminal()
}
