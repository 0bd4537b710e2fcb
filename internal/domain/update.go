package domain

import "github.com/google/uuid"

// StatusUpdate — одно событие в потоке статусов запуска.
//
// Updates эфемерны: они потребляются вызывающим один раз, в порядке
// производства, и не хранятся отдельно от Execution. Терминальный
// update всегда последний в потоке своего запуска.
type StatusUpdate struct {
	// ExecutionID — идентификатор execution.
	ExecutionID uuid.UUID `json:"execution_id"`

	// WorkflowID — идентификатор workflow.
	WorkflowID int64 `json:"workflow_id"`

	// Status — статус запуска на момент события.
	Status ExecutionStatus `json:"status"`

	// TaskID — текущий task (0, если update не про конкретный task).
	TaskID int64 `json:"current_task_id,omitempty"`

	// TaskName — имя текущего task.
	TaskName string `json:"current_task_name,omitempty"`

	// Message — человекочитаемое описание события.
	Message string `json:"message"`
}
