package domain

import "fmt"

// RunTotals — накопленные итоги одного run.
//
// Значение создаётся в начале run, передаётся через цикл явно
// и выбрасывается в конце. Между runs ничего не сохраняется.
type RunTotals struct {
	TotalSent      int `json:"total_sent"`
	TotalFailed    int `json:"total_failed"`
	IterationCount int `json:"iteration_count"`
}

// NextIteration возвращает копию с увеличенным счётчиком итераций.
func (t RunTotals) NextIteration() RunTotals {
	t.IterationCount++
	return t
}

// Add возвращает копию с добавленными результатами отправки.
func (t RunTotals) Add(sent, failed int) RunTotals {
	t.TotalSent += sent
	t.TotalFailed += failed
	return t
}

// Summary форматирует итоговое сообщение run.
func (t RunTotals) Summary() string {
	return fmt.Sprintf("Sent questionnaires: %d. Failed questionnaires: %d. Iterations: %d.",
		t.TotalSent, t.TotalFailed, t.IterationCount)
}
