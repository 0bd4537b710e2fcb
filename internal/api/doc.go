// Package api — HTTP API сервиса.
//
// Структура:
//   - routes.go            — регистрация маршрутов
//   - workflow_handler.go  — CRUD workflows
//   - task_handler.go      — CRUD tasks
//   - execution_handler.go — запуск executions (NDJSON stream) и статус
//   - dto.go               — request/response структуры
//   - response.go          — помощники для JSON ответов
//   - middleware.go        — logging и recovery
//
// Запуск workflow отдаёт стрим обновлений: один JSON объект на
// строку (application/x-ndjson), соединение держится открытым
// до терминального статуса.
package api
