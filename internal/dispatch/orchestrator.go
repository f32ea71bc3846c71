package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shaiso/Dispatch/internal/domain"
	"github.com/shaiso/Dispatch/internal/heartbeat"
	"github.com/shaiso/Dispatch/internal/referral"
	"github.com/shaiso/Dispatch/internal/telemetry"
)

// Poster — минимальный клиент Referral API, нужный оркестратору.
// Реализуется *referral.Client.
type Poster interface {
	Post(ctx context.Context, path string) (*referral.Response, error)
}

// Orchestrator выполняет dispatch runs.
//
// Orchestrator не хранит состояние между runs: итоги живут
// только внутри Run.
type Orchestrator struct {
	client Poster
	logger *slog.Logger
}

// Config — конфигурация Orchestrator.
type Config struct {
	Client Poster
	Logger *slog.Logger
}

// New создаёт новый Orchestrator.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		client: cfg.Client,
		logger: logger,
	}
}

// Run выполняет один run и возвращает его Outcome.
//
// reporter получает ровно один Started и ровно один Succeeded/Failed.
// Ошибки не возвращаются: любая из них превращается в Failure.
// Логгер из ctx (telemetry.WithLogger) имеет приоритет над Config.Logger.
func (o *Orchestrator) Run(ctx context.Context, cfg domain.RunConfiguration, inv domain.Invocation, reporter heartbeat.Reporter) domain.Outcome {
	reporter.Started(ctx)

	logger := telemetry.WithJob(telemetry.FromContextOr(ctx, o.logger), inv.Job)
	if inv.PastDue {
		logger.Warn("job is running late",
			"scheduled_at", inv.ScheduledAt,
			"delay", inv.Delay(),
		)
	}

	outcome := o.execute(ctx, cfg, logger)

	heartbeat.Report(ctx, reporter, outcome)
	return outcome
}

// execute — цикл create/send до терминального Outcome.
func (o *Orchestrator) execute(ctx context.Context, cfg domain.RunConfiguration, logger *slog.Logger) domain.Outcome {
	policy := IterationPolicy{MaxIterations: cfg.MaximumIterations}
	totals := domain.RunTotals{}

	for {
		totals = totals.NextIteration()

		created, err := o.createStep(ctx, cfg, logger)
		if err != nil {
			return failure(err)
		}
		telemetry.Questionnaires.WithLabelValues("created").Add(float64(created.CreatedCount))

		// send вызывается и после 204 от create: отправляем то,
		// что было создано в прошлых итерациях.
		sent, err := o.sendStep(ctx, cfg, logger)
		if err != nil {
			return failure(err)
		}
		telemetry.Questionnaires.WithLabelValues("sent").Add(float64(sent.SentCount))
		telemetry.Questionnaires.WithLabelValues("failed").Add(float64(sent.FailedCount))

		totals = totals.Add(sent.SentCount, sent.FailedCount)

		decision := policy.Evaluate(totals, created.HasMore)
		logger.Debug("iteration completed",
			"iteration", totals.IterationCount,
			"created", created.CreatedCount,
			"sent", sent.SentCount,
			"failed", sent.FailedCount,
			"decision", decision,
		)

		switch decision {
		case DecisionExceeded:
			telemetry.RunIterations.Observe(float64(totals.IterationCount))
			return domain.Failure(policy.ExceededMessage(totals), ErrMaxIterationsExceeded)
		case DecisionDone:
			telemetry.RunIterations.Observe(float64(totals.IterationCount))
			return domain.Success(totals.Summary())
		}
	}
}

// failure превращает ошибку шага в Failure.
func failure(err error) domain.Outcome {
	return domain.Failure(err.Error(), err)
}

// logStepError логирует исходную ошибку декодирования для нечитаемых ответов.
func logStepError(logger *slog.Logger, err error) {
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		return
	}

	if errors.Is(err, ErrMalformedResponse) {
		logger.Error("failed to decode response",
			"path", stepErr.Path,
			"error", stepErr.Err,
		)
	}
}
