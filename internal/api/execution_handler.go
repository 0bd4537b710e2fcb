package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AmmarAzhad/civils/internal/engine"
)

// StartExecution запускает workflow и стримит status updates.
// POST /api/v1/workflows/{id}/executions
//
// Ответ — application/x-ndjson: по одному StatusUpdate на строку,
// в темпе выполнения. Последняя строка всегда с терминальным
// статусом, после неё соединение закрывается. HTTP статус всегда
// 200: ошибки выполнения приходят внутри стрима.
func (h *Handler) StartExecution(w http.ResponseWriter, r *http.Request) {
	workflowID, ok := pathID(w, r, "invalid workflow id")
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	for update := range h.engine.ExecuteWorkflow(r.Context(), workflowID) {
		if err := enc.Encode(update); err != nil {
			// Клиент ушёл: контекст запроса отменён, движок
			// закроет execution сам.
			h.logger.Debug("stream write failed", "workflow_id", workflowID, "error", err)
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}
}

// ListExecutions возвращает executions workflow, свежие первыми.
// GET /api/v1/workflows/{id}/executions?limit=...&offset=...
func (h *Handler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	workflowID, ok := pathID(w, r, "invalid workflow id")
	if !ok {
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	executions, err := h.execRepo.ListByWorkflow(r.Context(), workflowID, limit, offset)
	if HandleRepoError(w, h.logger, err, "") {
		return
	}

	result := make([]ExecutionResponse, len(executions))
	for i, e := range executions {
		result[i] = ExecutionFromDomain(e)
	}

	List(w, result, len(result))
}

// GetExecution возвращает статус execution по ID.
// GET /api/v1/executions/{id}
func (h *Handler) GetExecution(w http.ResponseWriter, r *http.Request) {
	exec, err := h.engine.GetStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrInvalidExecutionID):
			BadRequest(w, "invalid execution id")
		case errors.Is(err, engine.ErrExecutionNotFound):
			NotFound(w, "execution not found")
		default:
			InternalError(w, h.logger, err)
		}
		return
	}

	Success(w, ExecutionFromDomain(*exec))
}
