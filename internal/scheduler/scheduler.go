package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/Dispatch/internal/domain"
)

// Источники вызова задания.
const (
	ReasonSchedule = "schedule"
	ReasonManual   = "manual"
	ReasonStartup  = "startup"
	ReasonMQ       = "mq"
)

// Runner выполняет одно задание. Реализуется *Job.
type Runner interface {
	Run(ctx context.Context, inv domain.Invocation) domain.Outcome
}

// Locker — выбор лидера между экземплярами (repo.AdvisoryLock).
type Locker interface {
	TryAcquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Scheduler вызывает задание по cron-расписанию и по запросу.
//
// Все вызовы выполняются в одной горутине Run, поэтому runs
// одного экземпляра никогда не пересекаются.
type Scheduler struct {
	runner    Runner
	schedule  cron.Schedule
	location  *time.Location
	job       string
	lateAfter time.Duration
	tick      time.Duration
	locker    Locker
	logger    *slog.Logger
	now       func() time.Time

	triggers chan string

	mu      sync.RWMutex
	nextDue time.Time
	leader  bool
}

// Config — конфигурация Scheduler.
type Config struct {
	Runner    Runner
	Schedule  cron.Schedule
	Location  *time.Location // default: UTC
	Job       string
	LateAfter time.Duration
	Tick      time.Duration // default: 1s
	Locker    Locker        // опционально; без него экземпляр всегда лидер
	Logger    *slog.Logger
}

// New создаёт новый Scheduler.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Runner == nil {
		return nil, ErrNoJob
	}
	if cfg.Schedule == nil {
		return nil, ErrNoSchedule
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	tick := cfg.Tick
	if tick <= 0 {
		tick = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		runner:    cfg.Runner,
		schedule:  cfg.Schedule,
		location:  loc,
		job:       cfg.Job,
		lateAfter: cfg.LateAfter,
		tick:      tick,
		locker:    cfg.Locker,
		logger:    logger,
		now:       time.Now,
		triggers:  make(chan string, 1),
	}, nil
}

// Trigger ставит внеплановый run в очередь.
// Возвращает false, если запрос уже ожидает выполнения.
func (s *Scheduler) Trigger(reason string) bool {
	select {
	case s.triggers <- reason:
		return true
	default:
		return false
	}
}

// NextDue возвращает время следующего планового run.
func (s *Scheduler) NextDue() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextDue
}

// IsLeader сообщает, держит ли экземпляр лидерство.
func (s *Scheduler) IsLeader() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leader
}

// Run крутит цикл планировщика до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) error {
	s.setNextDue(NextDue(s.schedule, s.now(), s.location))
	s.logger.Info("scheduler started", "job", s.job, "next_due", s.NextDue())

	tk := time.NewTicker(s.tick)
	defer tk.Stop()
	defer s.release()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()

		case <-tk.C:
			s.Tick(ctx)

		case reason := <-s.triggers:
			now := s.now()
			s.invoke(ctx, reason, now, now)
		}
	}
}

// Tick выполняет плановый run, если подошло время.
// Возвращает true, если задание было вызвано.
func (s *Scheduler) Tick(ctx context.Context) bool {
	now := s.now()
	due := s.NextDue()
	if now.Before(due) {
		return false
	}

	// следующее время считаем от now: пропущенные слоты не догоняем
	s.setNextDue(NextDue(s.schedule, now, s.location))
	return s.invoke(ctx, ReasonSchedule, due, now)
}

// invoke вызывает задание, если экземпляр лидер.
func (s *Scheduler) invoke(ctx context.Context, reason string, scheduledAt, startedAt time.Time) bool {
	if !s.acquire(ctx) {
		s.logger.Debug("not a leader, skipping run", "reason", reason)
		return false
	}

	inv := domain.Invocation{
		Job:         s.job,
		Reason:      reason,
		ScheduledAt: scheduledAt,
		StartedAt:   startedAt,
	}
	inv.PastDue = inv.IsLate(s.lateAfter)

	outcome := s.runner.Run(ctx, inv)
	s.logger.Debug("job finished",
		"reason", reason,
		"status", outcome.Status,
		"next_due", s.NextDue(),
	)
	return true
}

// acquire пытается стать (или подтвердить, что остаётся) лидером.
func (s *Scheduler) acquire(ctx context.Context) bool {
	if s.locker == nil {
		s.setLeader(true)
		return true
	}

	ok, err := s.locker.TryAcquire(ctx)
	if err != nil {
		s.logger.Warn("leader lock failed", "error", err)
		ok = false
	}
	if ok != s.IsLeader() {
		s.logger.Info("leadership changed", "leader", ok)
	}
	s.setLeader(ok)
	return ok
}

func (s *Scheduler) release() {
	if s.locker == nil || !s.IsLeader() {
		return
	}
	// ctx уже отменён, отпускаем лок с собственным таймаутом
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.locker.Release(ctx); err != nil {
		s.logger.Warn("failed to release leader lock", "error", err)
	}
	s.setLeader(false)
}

func (s *Scheduler) setNextDue(t time.Time) {
	s.mu.Lock()
	s.nextDue = t
	s.mu.Unlock()
}

func (s *Scheduler) setLeader(v bool) {
	s.mu.Lock()
	s.leader = v
	s.mu.Unlock()
}
