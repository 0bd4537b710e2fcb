// Package cli реализует инструмент командной строки Civils.
//
// # Обзор
//
// CLI — клиентская утилита для взаимодействия с Civils API.
// Работает через HTTP, не импортирует внутренние пакеты системы.
// CLI используется для управления workflows, tasks и executions.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Civils API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок. Запуск workflow читает NDJSON-стрим
// построчно и отдаёт каждый update в callback.
//
//	client := cli.NewClient("http://localhost:8080")
//	workflows, err := client.ListWorkflows()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: civils workflow list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - workflow: list, show, create, update, delete, tasks
//   - exec: start, status, list
//
// Каждая группа создаётся через фабричную функцию (NewWorkflowCmd
// и т.д.), принимающую clientFn и outputFn — замыкания для ленивого
// создания Client и Output после парсинга PersistentFlags.
package cli
