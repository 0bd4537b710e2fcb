package domain

import "time"

// ExecutionMode — режим выполнения task внутри своего шага.
type ExecutionMode string

const (
	// ModeSync — синхронный task. Выполняется последовательно,
	// в порядке возрастания task ID внутри шага.
	ModeSync ExecutionMode = "sync"

	// ModeAsync — асинхронный task. Выполняется параллельно
	// с другими async tasks того же шага, после всех sync tasks.
	ModeAsync ExecutionMode = "async"
)

// IsValid возвращает true для известного режима выполнения.
func (m ExecutionMode) IsValid() bool {
	return m == ModeSync || m == ModeAsync
}

// Workflow — определение рабочего процесса.
//
// Workflow — это "рецепт": упорядоченный набор tasks,
// сгруппированных по sequence в шаги. Определение неизменяемо
// на время выполнения; engine читает его и никогда не мутирует.
type Workflow struct {
	// ID — уникальный идентификатор workflow.
	ID int64 `json:"id"`

	// Name — имя workflow.
	Name string `json:"name"`

	// Description — описание назначения workflow.
	Description string `json:"description,omitempty"`

	// Tasks — tasks этого workflow, упорядоченные по (sequence, id).
	// Каждый task принадлежит ровно одному workflow.
	Tasks []Task `json:"tasks,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}

// HasTasks возвращает true, если у workflow есть хотя бы один task.
// Workflow без tasks не может быть выполнен.
func (w *Workflow) HasTasks() bool {
	return len(w.Tasks) > 0
}

// Task — отдельная единица работы внутри workflow.
//
// Sequence определяет принадлежность шагу: tasks с одинаковым
// sequence образуют один шаг. Mode определяет планирование внутри
// шага (последовательно или параллельно). Содержание работы task
// для engine непрозрачно — её выполняет Executor.
type Task struct {
	// ID — уникальный идентификатор task.
	ID int64 `json:"id"`

	// WorkflowID — ссылка на родительский workflow.
	WorkflowID int64 `json:"workflow_id"`

	// Name — имя task.
	Name string `json:"name"`

	// Description — описание task.
	Description string `json:"description,omitempty"`

	// Mode — режим выполнения: sync или async.
	Mode ExecutionMode `json:"execution_type"`

	// Sequence — номер шага (неотрицательный; совпадения допустимы
	// и означают tasks одного шага).
	Sequence int `json:"sequence"`

	// Config — произвольная конфигурация для исполнителя task.
	Config map[string]any `json:"config,omitempty"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения.
	UpdatedAt time.Time `json:"updated_at"`
}
