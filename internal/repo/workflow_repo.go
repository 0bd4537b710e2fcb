package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AmmarAzhad/civils/internal/domain"
)

// WorkflowRepo — репозиторий для работы с workflows и их tasks.
type WorkflowRepo struct {
	pool *pgxpool.Pool
}

// NewWorkflowRepo создаёт новый WorkflowRepo.
func NewWorkflowRepo(pool *pgxpool.Pool) *WorkflowRepo {
	return &WorkflowRepo{pool: pool}
}

// --- Workflow CRUD ---

// Create создаёт workflow вместе с его tasks одной транзакцией.
// ID (bigserial) генерирует БД, после вставки они проставляются
// в переданные структуры.
func (r *WorkflowRepo) Create(ctx context.Context, workflow *domain.Workflow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	query := `
		INSERT INTO workflows (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = tx.QueryRow(ctx, query,
		workflow.Name,
		nullString(workflow.Description),
		workflow.CreatedAt,
		workflow.UpdatedAt,
	).Scan(&workflow.ID)
	if err != nil {
		return fmt.Errorf("insert workflow: %w", err)
	}

	for i := range workflow.Tasks {
		task := &workflow.Tasks[i]
		task.WorkflowID = workflow.ID
		if err := insertTask(ctx, tx, task, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByID возвращает workflow по ID вместе с его tasks.
// Tasks отсортированы по (sequence, id).
func (r *WorkflowRepo) GetByID(ctx context.Context, id int64) (*domain.Workflow, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM workflows
		WHERE id = $1
	`
	var workflow domain.Workflow
	var description *string
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&workflow.ID,
		&workflow.Name,
		&description,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow by id: %w", err)
	}
	if description != nil {
		workflow.Description = *description
	}

	tasks, err := r.ListTasks(ctx, workflow.ID)
	if err != nil {
		return nil, err
	}
	workflow.Tasks = tasks

	return &workflow, nil
}

// List возвращает страницу workflows (без tasks) и общее количество.
func (r *WorkflowRepo) List(ctx context.Context, limit, offset int) ([]domain.Workflow, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM workflows`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count workflows: %w", err)
	}

	query := `
		SELECT id, name, description, created_at, updated_at
		FROM workflows
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []domain.Workflow
	for rows.Next() {
		var workflow domain.Workflow
		var description *string
		if err := rows.Scan(
			&workflow.ID,
			&workflow.Name,
			&description,
			&workflow.CreatedAt,
			&workflow.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan workflow: %w", err)
		}
		if description != nil {
			workflow.Description = *description
		}
		workflows = append(workflows, workflow)
	}
	return workflows, total, rows.Err()
}

// Update обновляет name и description workflow.
func (r *WorkflowRepo) Update(ctx context.Context, workflow *domain.Workflow) error {
	workflow.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE workflows
		SET name = $2, description = $3, updated_at = $4
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		workflow.ID,
		workflow.Name,
		nullString(workflow.Description),
		workflow.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update workflow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет workflow вместе с его tasks (ON DELETE CASCADE).
func (r *WorkflowRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workflow: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Task CRUD ---

// CreateTask добавляет task в существующий workflow.
func (r *WorkflowRepo) CreateTask(ctx context.Context, task *domain.Task) error {
	if !task.Mode.IsValid() {
		return fmt.Errorf("%w: execution type %q", ErrInvalidState, task.Mode)
	}
	return insertTask(ctx, r.pool, task, time.Now().UTC())
}

// GetTaskByID возвращает task по ID.
func (r *WorkflowRepo) GetTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `
		SELECT id, workflow_id, name, description, execution_type, sequence, config, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`
	task, err := scanTask(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return task, err
}

// ListTasks возвращает все tasks workflow в порядке (sequence, id).
func (r *WorkflowRepo) ListTasks(ctx context.Context, workflowID int64) ([]domain.Task, error) {
	query := `
		SELECT id, workflow_id, name, description, execution_type, sequence, config, created_at, updated_at
		FROM tasks
		WHERE workflow_id = $1
		ORDER BY sequence ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateTask обновляет task.
func (r *WorkflowRepo) UpdateTask(ctx context.Context, task *domain.Task) error {
	if !task.Mode.IsValid() {
		return fmt.Errorf("%w: execution type %q", ErrInvalidState, task.Mode)
	}

	configJSON, err := json.Marshal(task.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	task.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE tasks
		SET name = $2, description = $3, execution_type = $4, sequence = $5, config = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.pool.Exec(ctx, query,
		task.ID,
		task.Name,
		nullString(task.Description),
		task.Mode,
		task.Sequence,
		configJSON,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask удаляет task.
func (r *WorkflowRepo) DeleteTask(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

// queryRower покрывает pgxpool.Pool и pgx.Tx.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// insertTask вставляет task и проставляет сгенерированный ID.
func insertTask(ctx context.Context, q queryRower, task *domain.Task, now time.Time) error {
	configJSON, err := json.Marshal(task.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	task.CreatedAt = now
	task.UpdatedAt = now

	query := `
		INSERT INTO tasks (workflow_id, name, description, execution_type, sequence, config, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	err = q.QueryRow(ctx, query,
		task.WorkflowID,
		task.Name,
		nullString(task.Description),
		task.Mode,
		task.Sequence,
		configJSON,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// scanTask сканирует одну строку в Task.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	var description *string
	var configJSON []byte

	err := row.Scan(
		&task.ID,
		&task.WorkflowID,
		&task.Name,
		&description,
		&task.Mode,
		&task.Sequence,
		&configJSON,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description != nil {
		task.Description = *description
	}
	if configJSON != nil {
		if err := json.Unmarshal(configJSON, &task.Config); err != nil {
			return nil, fmt.Errorf("unmarshal config: %w", err)
		}
	}
	return &task, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
