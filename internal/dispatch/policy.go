package dispatch

import (
	"fmt"

	"github.com/shaiso/Dispatch/internal/domain"
)

// Decision — решение после завершённого цикла create/send.
type Decision int

const (
	// DecisionContinue — запускаем следующий цикл.
	DecisionContinue Decision = iota

	// DecisionDone — create сообщил, что работы больше нет.
	DecisionDone

	// DecisionExceeded — счётчик итераций превысил границу.
	DecisionExceeded
)

// String возвращает имя решения (для логов).
func (d Decision) String() string {
	switch d {
	case DecisionContinue:
		return "continue"
	case DecisionDone:
		return "done"
	case DecisionExceeded:
		return "exceeded"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// IterationPolicy ограничивает число циклов в run.
//
// Evaluate вызывается после того, как цикл уже выполнен, и сравнивает
// счётчик через ">" — граница срабатывает на цикле MaxIterations+1.
type IterationPolicy struct {
	MaxIterations int
}

// Evaluate принимает решение по итогам цикла.
// Превышение границы проверяется раньше завершения.
func (p IterationPolicy) Evaluate(totals domain.RunTotals, hasMore bool) Decision {
	if totals.IterationCount > p.MaxIterations {
		return DecisionExceeded
	}
	if !hasMore {
		return DecisionDone
	}
	return DecisionContinue
}

// ExceededMessage форматирует сообщение Failure при превышении границы.
func (p IterationPolicy) ExceededMessage(totals domain.RunTotals) string {
	return fmt.Sprintf("Exceeded max iterations of '%d'. %s", p.MaxIterations, totals.Summary())
}
