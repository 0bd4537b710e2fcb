package api

import (
	"encoding/json"
	"net/http"

	"github.com/AmmarAzhad/civils/internal/domain"
)

// ListTasks возвращает tasks workflow в порядке выполнения.
// GET /api/v1/workflows/{id}/tasks
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	workflowID, ok := pathID(w, r, "invalid workflow id")
	if !ok {
		return
	}

	// Проверяем, что workflow существует
	if _, err := h.workflowRepo.GetByID(r.Context(), workflowID); HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	tasks, err := h.workflowRepo.ListTasks(r.Context(), workflowID)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = TaskFromDomain(t)
	}

	List(w, result, len(result))
}

// CreateTask добавляет task в workflow.
// POST /api/v1/workflows/{id}/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	workflowID, ok := pathID(w, r, "invalid workflow id")
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}
	mode := domain.ExecutionMode(req.ExecutionType)
	if !mode.IsValid() {
		BadRequest(w, "invalid execution_type: "+req.ExecutionType)
		return
	}

	if _, err := h.workflowRepo.GetByID(r.Context(), workflowID); HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	task := &domain.Task{
		WorkflowID:  workflowID,
		Name:        req.Name,
		Description: req.Description,
		Mode:        mode,
		Sequence:    req.Sequence,
		Config:      req.Config,
	}

	if err := h.workflowRepo.CreateTask(r.Context(), task); HandleRepoError(w, h.logger, err, "") {
		return
	}

	h.invalidateWorkflow(r.Context(), workflowID)

	Created(w, TaskFromDomain(*task))
}

// GetTask возвращает task по ID.
// GET /api/v1/tasks/{id}
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid task id")
	if !ok {
		return
	}

	task, err := h.workflowRepo.GetTaskByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "task not found") {
		return
	}

	Success(w, TaskFromDomain(*task))
}

// UpdateTask обновляет task.
// PUT /api/v1/tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid task id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	task, err := h.workflowRepo.GetTaskByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "task not found") {
		return
	}

	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.ExecutionType != nil {
		mode := domain.ExecutionMode(*req.ExecutionType)
		if !mode.IsValid() {
			BadRequest(w, "invalid execution_type: "+*req.ExecutionType)
			return
		}
		task.Mode = mode
	}
	if req.Sequence != nil {
		task.Sequence = *req.Sequence
	}
	if req.Config != nil {
		task.Config = req.Config
	}

	if err := h.workflowRepo.UpdateTask(r.Context(), task); HandleRepoError(w, h.logger, err, "task not found") {
		return
	}

	h.invalidateWorkflow(r.Context(), task.WorkflowID)

	Success(w, TaskFromDomain(*task))
}

// DeleteTask удаляет task.
// DELETE /api/v1/tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid task id")
	if !ok {
		return
	}

	task, err := h.workflowRepo.GetTaskByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "task not found") {
		return
	}

	if err := h.workflowRepo.DeleteTask(r.Context(), id); HandleRepoError(w, h.logger, err, "task not found") {
		return
	}

	h.invalidateWorkflow(r.Context(), task.WorkflowID)

	NoContent(w)
}
