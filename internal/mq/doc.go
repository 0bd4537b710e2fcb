// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange и audit-очереди
//   - publisher.go  — публикация сообщений
//   - sink.go       — fan-out status updates движка в exchange
//
// В exchange civils.executions (topic) уходит каждый status update
// каждого execution с routing key execution.<status>. Потребителей
// внутри системы нет: exchange существует для внешних подписчиков
// (аудит, нотификации), живые updates вызывающий получает по HTTP.
package mq
