package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Dispatch/internal/domain"
)

// DataResponse — успешный ответ с одним объектом.
type DataResponse[T any] struct {
	Data T `json:"data"`
}

// ErrorResponse — ответ с ошибкой.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail — детали ошибки.
type ErrorDetail struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

// Page — окно выборки истории runs.
type Page struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// RunListResponse — страница истории runs.
type RunListResponse struct {
	Data []RunResponse `json:"data"`
	Page Page          `json:"page"`
}

// RunResponse — ответ с run.
type RunResponse struct {
	ID          uuid.UUID        `json:"id"`
	Job         string           `json:"job"`
	Reason      string           `json:"reason"`
	Status      domain.RunStatus `json:"status"`
	Message     string           `json:"message,omitempty"`
	ScheduledAt time.Time        `json:"scheduled_at"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  *time.Time       `json:"finished_at,omitempty"`
	DurationMs  int64            `json:"duration_ms,omitempty"`
}

// RunFromDomain конвертирует domain.Run в RunResponse.
func RunFromDomain(r domain.Run) RunResponse {
	return RunResponse{
		ID:          r.ID,
		Job:         r.Job,
		Reason:      r.Reason,
		Status:      r.Status,
		Message:     r.Message,
		ScheduledAt: r.ScheduledAt,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		DurationMs:  r.Duration().Milliseconds(),
	}
}

// TriggerRequest — запрос на внеплановый run. Тело необязательно.
type TriggerRequest struct {
	Reason string `json:"reason,omitempty"`
}

// TriggerResponse — ответ на принятый триггер.
type TriggerResponse struct {
	Job    string `json:"job"`
	Reason string `json:"reason"`
}

// ScheduleResponse — состояние расписания.
type ScheduleResponse struct {
	Job     string    `json:"job"`
	NextDue time.Time `json:"next_due"`
	Leader  bool      `json:"leader"`
}
