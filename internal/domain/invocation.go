package domain

import "time"

// Invocation — контекст вызова задания планировщиком.
type Invocation struct {
	// Job — имя задания.
	Job string

	// Reason — источник вызова: "schedule", "manual", "startup", "mq".
	Reason string

	// ScheduledAt — время, на которое вызов был запланирован.
	// Для ручных вызовов совпадает со StartedAt.
	ScheduledAt time.Time

	// StartedAt — фактическое время вызова.
	StartedAt time.Time

	// PastDue — вызов опоздал относительно расписания.
	PastDue bool
}

// Delay возвращает задержку относительно расписания.
func (i Invocation) Delay() time.Duration {
	if i.StartedAt.Before(i.ScheduledAt) {
		return 0
	}
	return i.StartedAt.Sub(i.ScheduledAt)
}

// IsLate сообщает, превысила ли задержка порог threshold.
func (i Invocation) IsLate(threshold time.Duration) bool {
	return i.Delay() > threshold
}
