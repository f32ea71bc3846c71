// Package cli реализует инструмент командной строки dispatch.
//
// # Обзор
//
// Команды делятся на две группы:
//   - удалённые (runs, trigger, schedule status) — ходят в HTTP API
//     планировщика через Client;
//   - локальные (run, schedule next) — читают конфигурацию и работают
//     без сервера.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для API планировщика. Разбирает конверты {"data"},
// {"data", "page"} и {"error"}; ошибка API становится *APIError
// с request_id сервера.
//
//	client := cli.NewClient("http://localhost:8083")
//	runs, page, err := client.ListRuns(cli.ListRunsOpts{Status: "FAILED"})
//
// ## Output
//
// Печать по типу результата: Runs, Run, Schedule, Upcoming, Outcome.
// По умолчанию таблицы (text/tabwriter), с флагом --json — JSON.
//
// Данные выводятся в stdout, подсказки и провал run — в stderr.
// Это позволяет использовать pipe: dispatch runs list --json | jq .
//
// ## Commands
//
// Каждая команда создаётся фабричной функцией (NewRunsCmd и т.д.),
// принимающей clientFn / configFn / outputFn — замыкания для ленивого
// создания зависимостей после парсинга PersistentFlags.
package cli
