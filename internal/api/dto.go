package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/AmmarAzhad/civils/internal/domain"
)

// Workflow DTOs

// CreateWorkflowRequest — запрос на создание workflow.
type CreateWorkflowRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Tasks       []CreateTaskRequest `json:"tasks,omitempty"`
}

// UpdateWorkflowRequest — запрос на обновление workflow.
type UpdateWorkflowRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// WorkflowResponse — ответ с workflow.
type WorkflowResponse struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Tasks       []TaskResponse `json:"tasks,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// WorkflowFromDomain конвертирует domain.Workflow в WorkflowResponse.
func WorkflowFromDomain(w domain.Workflow) WorkflowResponse {
	resp := WorkflowResponse{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
	if len(w.Tasks) > 0 {
		resp.Tasks = make([]TaskResponse, len(w.Tasks))
		for i, t := range w.Tasks {
			resp.Tasks[i] = TaskFromDomain(t)
		}
	}
	return resp
}

// Task DTOs

// CreateTaskRequest — запрос на создание task.
type CreateTaskRequest struct {
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	ExecutionType string         `json:"execution_type"`
	Sequence      int            `json:"sequence"`
	Config        map[string]any `json:"config,omitempty"`
}

// UpdateTaskRequest — запрос на обновление task.
type UpdateTaskRequest struct {
	Name          *string        `json:"name,omitempty"`
	Description   *string        `json:"description,omitempty"`
	ExecutionType *string        `json:"execution_type,omitempty"`
	Sequence      *int           `json:"sequence,omitempty"`
	Config        map[string]any `json:"config,omitempty"`
}

// TaskResponse — ответ с task.
type TaskResponse struct {
	ID            int64          `json:"id"`
	WorkflowID    int64          `json:"workflow_id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	ExecutionType string         `json:"execution_type"`
	Sequence      int            `json:"sequence"`
	Config        map[string]any `json:"config,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// TaskFromDomain конвертирует domain.Task в TaskResponse.
func TaskFromDomain(t domain.Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		WorkflowID:    t.WorkflowID,
		Name:          t.Name,
		Description:   t.Description,
		ExecutionType: string(t.Mode),
		Sequence:      t.Sequence,
		Config:        t.Config,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// Execution DTOs

// ExecutionResponse — ответ со статусом execution.
type ExecutionResponse struct {
	ID          uuid.UUID  `json:"id"`
	WorkflowID  int64      `json:"workflow_id"`
	Status      string     `json:"status"`
	LastMessage string     `json:"last_message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// ExecutionFromDomain конвертирует domain.Execution в ExecutionResponse.
func ExecutionFromDomain(e domain.Execution) ExecutionResponse {
	return ExecutionResponse{
		ID:          e.ID,
		WorkflowID:  e.WorkflowID,
		Status:      string(e.Status),
		LastMessage: e.LastMessage,
		CreatedAt:   e.CreatedAt,
		FinishedAt:  e.FinishedAt,
	}
}
