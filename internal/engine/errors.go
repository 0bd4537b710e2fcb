package engine

import "errors"

// Ошибки engine.
var (
	// ErrInvalidExecutionID — строка не является валидным UUID execution.
	ErrInvalidExecutionID = errors.New("invalid execution id")

	// ErrExecutionNotFound — execution не найден в store.
	ErrExecutionNotFound = errors.New("execution not found")
)
