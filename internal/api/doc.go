// Package api содержит HTTP API планировщика.
//
// Структура:
//   - handler.go         — Handler с DI (история runs, планировщик, logger)
//   - routes.go          — регистрация маршрутов
//   - middleware.go      — request_id, access-лог и метрика по маршруту, recovery
//   - response.go        — запись ответов {"data"} / {"error"} и ошибок хранилища
//   - dto.go             — Data Transfer Objects (request/response)
//   - run_handler.go     — обработчики для /runs
//   - trigger_handler.go — внеплановый запуск и состояние расписания
//
// Без хранилища истории эндпоинты /runs отвечают 503.
package api
