// Package dispatch — оркестратор пакетной рассылки анкет.
//
// Один run — последовательность циклов create → send против Referral API:
//
//	Started → loop {
//	    create (204 = больше нечего создавать)
//	    send   (204 / nothingToSend = нечего отправлять)
//	    итоги += результат send
//	    проверка границы итераций
//	} → Succeeded | Failed
//
// Любая ошибка терминальна для run: повторов внутри run нет,
// ровно один Failure уходит в heartbeat.Reporter. Граница итераций
// проверяется после цикла, поэтому run выполняет не больше
// MaximumIterations+1 циклов.
//
// Структура:
//   - orchestrator.go — цикл run и итоговое сообщение
//   - create.go       — create-шаг и классификация его ответа
//   - send.go         — send-шаг и классификация его ответа
//   - policy.go       — граница итераций
//   - errors.go       — классы ошибок и StepError
package dispatch
