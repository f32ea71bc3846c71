// Package heartbeat реализует Status Reporter для dispatch runs.
//
// Reporter получает ровно один Started и затем ровно один Succeeded
// или Failed за run. Вызовы fire-and-forget: ошибки внутри реализаций
// логируются и не возвращаются вызывающему.
//
// Реализации:
//   - LogReporter     — строки slog
//   - MetricsReporter — Prometheus счётчики и длительность
//   - StoreReporter   — история runs в Postgres
//   - PublishReporter — события в RabbitMQ (dispatch.heartbeats)
//   - Multi           — рассылка в несколько Reporter по порядку
package heartbeat
