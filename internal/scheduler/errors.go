package scheduler

import "errors"

var (
	// ErrNoSchedule — Scheduler создан без расписания.
	ErrNoSchedule = errors.New("scheduler: schedule is required")

	// ErrNoJob — Scheduler создан без задания.
	ErrNoJob = errors.New("scheduler: job is required")
)
