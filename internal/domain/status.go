package domain

// ExecutionStatus — статус выполнения execution.
//
// Жизненный цикл:
//
//	PENDING → RUNNING → COMPLETED
//	                  ↘ FAILED
//	          (или) → CANCELLED (зарезервирован для внешней отмены)
//
// Переходы монотонны: из терминального статуса выхода нет.
type ExecutionStatus string

const (
	// StatusUnspecified — неизвестный статус (значение по умолчанию
	// на уровне wire-протокола; внутри engine не используется).
	StatusUnspecified ExecutionStatus = "UNSPECIFIED"

	// StatusPending — execution создан, но ещё не начал выполняться.
	StatusPending ExecutionStatus = "PENDING"

	// StatusRunning — execution в процессе выполнения.
	StatusRunning ExecutionStatus = "RUNNING"

	// StatusCompleted — все шаги завершились успешно.
	StatusCompleted ExecutionStatus = "COMPLETED"

	// StatusFailed — хотя бы один task упал, либо произошла
	// внутренняя ошибка engine.
	StatusFailed ExecutionStatus = "FAILED"

	// StatusCancelled — execution отменён извне. Часть словаря
	// статусов; внутри engine переход в CANCELLED не инициируется.
	StatusCancelled ExecutionStatus = "CANCELLED"
)

// IsTerminal возвращает true, если статус финальный.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление статуса.
func (s ExecutionStatus) String() string {
	return string(s)
}

// ParseStatus парсит строку в ExecutionStatus.
// Неизвестные значения дают StatusUnspecified.
func ParseStatus(s string) ExecutionStatus {
	switch s {
	case "PENDING":
		return StatusPending
	case "RUNNING":
		return StatusRunning
	case "COMPLETED":
		return StatusCompleted
	case "FAILED":
		return StatusFailed
	case "CANCELLED":
		return StatusCancelled
	default:
		return StatusUnspecified
	}
}
