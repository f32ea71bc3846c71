package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageType — тип сообщения.
type MessageType string

// Типы сообщений.
const (
	MessageTypeStarted   MessageType = "dispatch.started"
	MessageTypeSucceeded MessageType = "dispatch.succeeded"
	MessageTypeFailed    MessageType = "dispatch.failed"
	MessageTypeTrigger   MessageType = "dispatch.trigger"
)

// Message — конверт сообщения.
type Message struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// HeartbeatPayload — payload heartbeat-события.
type HeartbeatPayload struct {
	RunID   uuid.UUID `json:"run_id"`
	Job     string    `json:"job"`
	Message string    `json:"message,omitempty"`
}

// TriggerPayload — payload запроса внепланового run.
type TriggerPayload struct {
	Reason string `json:"reason"`
}

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{conn: conn, logger: logger}
}

// NewMessage собирает конверт с новым ID.
func NewMessage(msgType MessageType, payload any) (*Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Message{
		ID:        uuid.New().String(),
		Type:      msgType,
		Payload:   raw,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(ctx,
			string(exchange),
			string(routingKey),
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Type:         string(msg.Type),
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// PublishHeartbeat публикует heartbeat-событие run.
// Routing key совпадает с типом события, чтобы мониторинг мог
// подписаться на "dispatch.failed" или "dispatch.#".
func (p *Publisher) PublishHeartbeat(ctx context.Context, msgType MessageType, payload HeartbeatPayload) error {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return p.Publish(ctx, ExchangeHeartbeats, RoutingKey(msgType), msg)
}

// PublishTrigger публикует запрос внепланового run.
func (p *Publisher) PublishTrigger(ctx context.Context, reason string) error {
	msg, err := NewMessage(MessageTypeTrigger, TriggerPayload{Reason: reason})
	if err != nil {
		return err
	}
	return p.Publish(ctx, ExchangeTriggers, RoutingKeyRun, msg)
}
