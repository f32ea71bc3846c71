package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run — запись истории одного dispatch run.
//
// Запись ведёт heartbeat.StoreReporter, оркестратор о ней не знает.
type Run struct {
	// ID — уникальный идентификатор run.
	ID uuid.UUID `json:"id"`

	// Job — имя задания (config job.name).
	Job string `json:"job"`

	// Reason — что запустило run: "schedule", "manual", "startup", "mq".
	Reason string `json:"reason"`

	// Status — текущий статус.
	Status RunStatus `json:"status"`

	// Message — сообщение терминального Outcome.
	Message string `json:"message,omitempty"`

	// ScheduledAt — время по расписанию.
	ScheduledAt time.Time `json:"scheduled_at"`

	// StartedAt — фактическое время старта.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt — время завершения. Nil, пока run выполняется.
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// NewRun создаёт Run для вызова.
func NewRun(inv Invocation) *Run {
	return &Run{
		ID:          uuid.New(),
		Job:         inv.Job,
		Reason:      inv.Reason,
		Status:      RunStatusStarted,
		ScheduledAt: inv.ScheduledAt,
		StartedAt:   inv.StartedAt,
	}
}

// Duration возвращает продолжительность выполнения.
// Возвращает 0, если run ещё не завершён.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// MarkSucceeded переводит run в статус SUCCEEDED.
func (r *Run) MarkSucceeded(message string) {
	r.finish(RunStatusSucceeded, message)
}

// MarkFailed переводит run в статус FAILED.
func (r *Run) MarkFailed(message string) {
	r.finish(RunStatusFailed, message)
}

func (r *Run) finish(status RunStatus, message string) {
	now := time.Now()
	r.Status = status
	r.Message = message
	r.FinishedAt = &now
}
