// Package mq — RabbitMQ для dispatch-сервиса.
//
// Структура:
//   - connection.go — соединение с reconnect
//   - topology.go   — exchanges, queues, bindings
//   - publisher.go  — heartbeat-события и триггеры
//   - consumer.go   — потребление очереди триггеров
//
// Типы сообщений:
//   - dispatch.started / dispatch.succeeded / dispatch.failed — heartbeat run
//   - dispatch.trigger — запрос внепланового run
//
// Exchanges:
//   - dispatch.heartbeats (topic)  — heartbeat, routing key = тип события
//   - dispatch.triggers   (direct) — триггеры, очередь dispatch.trigger
//   - dispatch.dlq        (direct) — отклонённые триггеры
package mq
