// Package telemetry обеспечивает наблюдаемость dispatch-сервиса.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики (runs, запросы к Referral API, анкеты)
//
// Метрики регистрируются в default registry и отдаются на /metrics.
package telemetry
