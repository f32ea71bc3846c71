package scheduler

import (
	"context"
	"log/slog"

	"github.com/shaiso/Dispatch/internal/dispatch"
	"github.com/shaiso/Dispatch/internal/domain"
	"github.com/shaiso/Dispatch/internal/heartbeat"
	"github.com/shaiso/Dispatch/internal/telemetry"
)

// Job связывает вызов планировщика с Orchestrator:
// на каждый run собирает свой Reporter.
type Job struct {
	orchestrator *dispatch.Orchestrator
	runConfig    domain.RunConfiguration
	store        heartbeat.RunStore
	publisher    heartbeat.HeartbeatPublisher
	logger       *slog.Logger
}

// JobConfig — конфигурация Job.
type JobConfig struct {
	Orchestrator *dispatch.Orchestrator
	RunConfig    domain.RunConfiguration
	Store        heartbeat.RunStore           // опционально
	Publisher    heartbeat.HeartbeatPublisher // опционально
	Logger       *slog.Logger
}

// NewJob создаёт новый Job.
func NewJob(cfg JobConfig) *Job {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Job{
		orchestrator: cfg.Orchestrator,
		runConfig:    cfg.RunConfig,
		store:        cfg.Store,
		publisher:    cfg.Publisher,
		logger:       logger,
	}
}

// Run реализует Runner.
func (j *Job) Run(ctx context.Context, inv domain.Invocation) domain.Outcome {
	run := domain.NewRun(inv)
	logger := telemetry.WithRunID(j.logger, run.ID.String()).With("reason", inv.Reason)
	ctx = telemetry.WithLogger(ctx, logger)

	return j.orchestrator.Run(ctx, j.runConfig, inv, j.reporter(run, logger))
}

// reporter собирает Reporter для одного run.
func (j *Job) reporter(run *domain.Run, logger *slog.Logger) heartbeat.Reporter {
	reporters := heartbeat.Multi{
		heartbeat.NewLogReporter(logger),
		heartbeat.NewMetricsReporter(),
	}
	if j.store != nil {
		reporters = append(reporters, heartbeat.NewStoreReporter(j.store, run, logger))
	}
	if j.publisher != nil {
		reporters = append(reporters, heartbeat.NewPublishReporter(j.publisher, run, logger))
	}
	return reporters
}
