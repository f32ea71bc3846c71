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

// Exchanges — имена обменников.
const (
	ExchangeHeartbeats Exchange = "dispatch.heartbeats"
	ExchangeTriggers   Exchange = "dispatch.triggers"
	ExchangeDLQ        Exchange = "dispatch.dlq"
)

// Queues — имена очередей.
const (
	QueueTrigger     Queue = "dispatch.trigger"
	QueueDLQTriggers Queue = "dlq.triggers"
)

// Routing keys.
const (
	RoutingKeyRun         RoutingKey = "run"
	RoutingKeyDLQTriggers RoutingKey = "triggers"
)

// SetupTopology объявляет exchanges, queues и bindings.
// Heartbeat-очереди объявляют потребители (мониторинг), не сервис.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		exchanges := []struct {
			name Exchange
			kind string
		}{
			{ExchangeHeartbeats, amqp.ExchangeTopic},
			{ExchangeTriggers, amqp.ExchangeDirect},
			{ExchangeDLQ, amqp.ExchangeDirect},
		}
		for _, ex := range exchanges {
			if err := ch.ExchangeDeclare(string(ex.name), ex.kind, true, false, false, false, nil); err != nil {
				return fmt.Errorf("declare exchange %s: %w", ex.name, err)
			}
		}

		queues := []struct {
			name Queue
			args amqp.Table
		}{
			// отклонённые триггеры уходят в DLQ
			{QueueTrigger, amqp.Table{
				"x-dead-letter-exchange":    string(ExchangeDLQ),
				"x-dead-letter-routing-key": string(RoutingKeyDLQTriggers),
			}},
			{QueueDLQTriggers, nil},
		}
		for _, q := range queues {
			if _, err := ch.QueueDeclare(string(q.name), true, false, false, false, q.args); err != nil {
				return fmt.Errorf("declare queue %s: %w", q.name, err)
			}
		}

		bindings := []struct {
			queue      Queue
			routingKey RoutingKey
			exchange   Exchange
		}{
			{QueueTrigger, RoutingKeyRun, ExchangeTriggers},
			{QueueDLQTriggers, RoutingKeyDLQTriggers, ExchangeDLQ},
		}
		for _, b := range bindings {
			if err := ch.QueueBind(string(b.queue), string(b.routingKey), string(b.exchange), false, nil); err != nil {
				return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
			}
		}

		return nil
	})
}
