// Package telemetry обеспечивает наблюдаемость системы.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus счётчики executions и tasks
//
// Формат логирования единый для всех бинарей; метрики
// экспортируются на /metrics endpoint в civils-api.
package telemetry
