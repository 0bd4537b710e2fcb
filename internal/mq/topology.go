package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

const (
	// ExchangeExecutions — topic exchange со status updates executions.
	// Routing key: execution.<status> (например execution.failed).
	ExchangeExecutions Exchange = "civils.executions"

	// QueueExecutionEvents — durable audit-очередь со всеми updates.
	// Система сама её не читает.
	QueueExecutionEvents Queue = "executions.events"

	// RoutingKeyAll матчит все события executions.
	RoutingKeyAll RoutingKey = "execution.#"
)

// SetupTopology объявляет exchange и audit-очередь. Операции
// идемпотентны, вызывается при каждом старте сервиса.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeExecutions), // name
			"topic",                    // type
			true,                       // durable
			false,                      // auto-deleted
			false,                      // internal
			false,                      // no-wait
			nil,                        // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeExecutions, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueExecutionEvents), // name
			true,                         // durable
			false,                        // delete when unused
			false,                        // exclusive
			false,                        // no-wait
			nil,                          // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueExecutionEvents, err)
		}

		err = ch.QueueBind(
			string(QueueExecutionEvents), // queue name
			string(RoutingKeyAll),        // routing key
			string(ExchangeExecutions),   // exchange
			false,                        // no-wait
			nil,                          // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueExecutionEvents, ExchangeExecutions, err)
		}

		return nil
	})
}
