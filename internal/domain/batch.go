package domain

// CreateBatchResult — тело успешного ответа create-эндпоинта.
//
// Если ErrorCount > 0, батч считается проблемным, даже если часть
// анкет была создана (CreatedCount).
type CreateBatchResult struct {
	// CreatedCount — сколько анкет создано в этом батче.
	CreatedCount int `json:"createdCount"`

	// ErrorCount — сколько анкет не удалось создать.
	ErrorCount int `json:"errorCount"`

	// Errors — тексты ошибок в порядке, в котором их вернул API.
	Errors []string `json:"errors"`
}

// HasErrors возвращает true, если API сообщил хотя бы об одной ошибке.
func (r CreateBatchResult) HasErrors() bool {
	return r.ErrorCount > 0
}

// SendBatchResult — тело успешного ответа send-эндпоинта.
type SendBatchResult struct {
	// SentCount — сколько анкет отправлено.
	SentCount int `json:"sentCount"`

	// FailedCount — сколько анкет отправить не удалось.
	FailedCount int `json:"failedCount"`

	// NothingToSend — API сообщил, что отправлять нечего.
	// Обрабатывается так же, как 204.
	NothingToSend bool `json:"nothingToSend"`
}

// RunConfiguration — параметры одного запуска.
// Заполняется из провалидированного config.Config и не меняется во время run.
type RunConfiguration struct {
	BaseURL    string
	CreatePath string
	SendPath   string

	// MaximumIterations — верхняя граница циклов create/send (>= 1).
	// Проверка выполняется после цикла, поэтому run может выполнить
	// MaximumIterations+1 циклов.
	MaximumIterations int

	APIKey string
}
