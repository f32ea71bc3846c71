package domain

// Outcome — терминальный результат run.
//
// Создаётся ровно один раз за run и передаётся в heartbeat.Reporter.
type Outcome struct {
	// Status — RunStatusSucceeded или RunStatusFailed.
	Status RunStatus

	// Message — сообщение для Reporter (передаётся как есть).
	Message string

	// Cause — классифицированная ошибка для Failure (nil для Success).
	// Не попадает в сообщение, используется для метрик и логов.
	Cause error
}

// Success создаёт успешный Outcome.
func Success(message string) Outcome {
	return Outcome{Status: RunStatusSucceeded, Message: message}
}

// Failure создаёт неуспешный Outcome.
func Failure(message string, cause error) Outcome {
	return Outcome{Status: RunStatusFailed, Message: message, Cause: cause}
}

// IsSuccess возвращает true для Success.
func (o Outcome) IsSuccess() bool {
	return o.Status == RunStatusSucceeded
}
