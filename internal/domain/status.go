package domain

// RunStatus — статус dispatch run.
//
// Жизненный цикл:
//
//	STARTED → SUCCEEDED
//	        ↘ FAILED
type RunStatus string

const (
	// RunStatusStarted — run начался, терминальный статус ещё не получен.
	RunStatusStarted RunStatus = "STARTED"

	// RunStatusSucceeded — run успешно завершён.
	RunStatusSucceeded RunStatus = "SUCCEEDED"

	// RunStatusFailed — run завершился с ошибкой.
	RunStatusFailed RunStatus = "FAILED"
)

// IsTerminal возвращает true, если статус финальный.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusSucceeded, RunStatusFailed:
		return true
	default:
		return false
	}
}

// ParseRunStatus парсит строку в RunStatus.
// Возвращает false для неизвестных значений.
func ParseRunStatus(s string) (RunStatus, bool) {
	switch RunStatus(s) {
	case RunStatusStarted, RunStatusSucceeded, RunStatusFailed:
		return RunStatus(s), true
	default:
		return "", false
	}
}
