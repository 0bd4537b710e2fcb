package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AmmarAzhad/civils/internal/domain"
)

// ExecutionRepo — репозиторий для работы с workflow executions.
type ExecutionRepo struct {
	pool *pgxpool.Pool
}

// NewExecutionRepo создаёт новый ExecutionRepo.
func NewExecutionRepo(pool *pgxpool.Pool) *ExecutionRepo {
	return &ExecutionRepo{pool: pool}
}

// Create создаёт запись execution.
func (r *ExecutionRepo) Create(ctx context.Context, e *domain.Execution) error {
	query := `
		INSERT INTO workflow_executions (id, workflow_id, status, last_message, created_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		e.ID,
		e.WorkflowID,
		e.Status,
		nullString(e.LastMessage),
		e.CreatedAt,
		e.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// GetByID возвращает execution по ID.
func (r *ExecutionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Execution, error) {
	query := `
		SELECT id, workflow_id, status, last_message, created_at, finished_at
		FROM workflow_executions
		WHERE id = $1
	`
	var e domain.Execution
	var lastMessage *string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&e.ID,
		&e.WorkflowID,
		&e.Status,
		&lastMessage,
		&e.CreatedAt,
		&e.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get execution by id: %w", err)
	}
	if lastMessage != nil {
		e.LastMessage = *lastMessage
	}
	return &e, nil
}

// UpdateStatus применяет переход статуса к e и записывает его в БД.
// Структура e меняется даже при ошибке записи.
func (r *ExecutionRepo) UpdateStatus(ctx context.Context, e *domain.Execution, status domain.ExecutionStatus, message string) error {
	e.Transition(status, message)

	query := `
		UPDATE workflow_executions
		SET status = $2, last_message = $3, finished_at = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		e.ID,
		e.Status,
		nullString(e.LastMessage),
		e.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update execution status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByWorkflow возвращает executions workflow, свежие первыми.
func (r *ExecutionRepo) ListByWorkflow(ctx context.Context, workflowID int64, limit, offset int) ([]domain.Execution, error) {
	query := `
		SELECT id, workflow_id, status, last_message, created_at, finished_at
		FROM workflow_executions
		WHERE workflow_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, workflowID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var executions []domain.Execution
	for rows.Next() {
		var e domain.Execution
		var lastMessage *string
		if err := rows.Scan(
			&e.ID,
			&e.WorkflowID,
			&e.Status,
			&lastMessage,
			&e.CreatedAt,
			&e.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		if lastMessage != nil {
			e.LastMessage = *lastMessage
		}
		executions = append(executions, e)
	}
	return executions, rows.Err()
}
