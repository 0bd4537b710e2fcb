package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/AmmarAzhad/civils/internal/domain"
)

// ListWorkflows возвращает страницу workflows.
// GET /api/v1/workflows?limit=...&offset=...
func (h *Handler) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	workflows, total, err := h.workflowRepo.List(r.Context(), limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]WorkflowResponse, len(workflows))
	for i, workflow := range workflows {
		result[i] = WorkflowFromDomain(workflow)
	}

	List(w, result, total)
}

// CreateWorkflow создаёт workflow, опционально вместе с tasks.
// POST /api/v1/workflows
func (h *Handler) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.Name == "" {
		BadRequest(w, "name is required")
		return
	}

	workflow := &domain.Workflow{
		Name:        req.Name,
		Description: req.Description,
	}
	for _, t := range req.Tasks {
		mode := domain.ExecutionMode(t.ExecutionType)
		if !mode.IsValid() {
			BadRequest(w, "invalid execution_type: "+t.ExecutionType)
			return
		}
		workflow.Tasks = append(workflow.Tasks, domain.Task{
			Name:        t.Name,
			Description: t.Description,
			Mode:        mode,
			Sequence:    t.Sequence,
			Config:      t.Config,
		})
	}

	if err := h.workflowRepo.Create(r.Context(), workflow); err != nil {
		InternalError(w, h.logger, err)
		return
	}

	Created(w, WorkflowFromDomain(*workflow))
}

// GetWorkflow возвращает workflow по ID вместе с tasks.
// GET /api/v1/workflows/{id}
func (h *Handler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid workflow id")
	if !ok {
		return
	}

	workflow, err := h.workflowRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	Success(w, WorkflowFromDomain(*workflow))
}

// UpdateWorkflow обновляет name и description workflow.
// PUT /api/v1/workflows/{id}
func (h *Handler) UpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid workflow id")
	if !ok {
		return
	}

	var req UpdateWorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	workflow, err := h.workflowRepo.GetByID(r.Context(), id)
	if HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	if req.Name != nil {
		workflow.Name = *req.Name
	}
	if req.Description != nil {
		workflow.Description = *req.Description
	}

	if err := h.workflowRepo.Update(r.Context(), workflow); HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	h.invalidateWorkflow(r.Context(), id)

	Success(w, WorkflowFromDomain(*workflow))
}

// DeleteWorkflow удаляет workflow вместе с tasks.
// DELETE /api/v1/workflows/{id}
func (h *Handler) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "invalid workflow id")
	if !ok {
		return
	}

	if err := h.workflowRepo.Delete(r.Context(), id); HandleRepoError(w, h.logger, err, "workflow not found") {
		return
	}

	h.invalidateWorkflow(r.Context(), id)

	NoContent(w)
}

// --- Helpers ---

// pathID парсит path-параметр {id} как int64.
func pathID(w http.ResponseWriter, r *http.Request, badMsg string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		BadRequest(w, badMsg)
		return 0, false
	}
	return id, true
}

// queryInt парсит query-параметр в int с дефолтным значением.
func queryInt(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
