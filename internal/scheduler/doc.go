// Package scheduler вызывает dispatch job по cron-расписанию.
//
// Структура:
//   - scheduler.go — цикл Scheduler (Tick, Trigger, leader election)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//   - job.go       — Job: сборка Reporter и вызов dispatch.Orchestrator
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Runner:    job,
//	    Schedule:  schedule,
//	    Job:       cfg.Job.Name,
//	    LateAfter: cfg.LateAfter(),
//	    Locker:    repo.NewAdvisoryLock(pool, lockKey), // опционально
//	    Logger:    logger,
//	})
//
//	go sched.Run(ctx)
//	sched.Trigger(scheduler.ReasonManual)
//
// Leader Election:
//
// При заданном Locker run выполняется только экземпляром,
// который держит pg_try_advisory_lock. Внеплановые вызовы
// на экземпляре без лидерства отбрасываются.
package scheduler
