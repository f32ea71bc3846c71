package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Dispatch/internal/config"
	"github.com/shaiso/Dispatch/internal/dispatch"
	"github.com/shaiso/Dispatch/internal/domain"
	"github.com/shaiso/Dispatch/internal/heartbeat"
	"github.com/shaiso/Dispatch/internal/referral"
	"github.com/shaiso/Dispatch/internal/scheduler"
)

// ErrRunFailed — локальный run завершился Failure.
var ErrRunFailed = errors.New("dispatch run failed")

// NewRunCmd создаёт команду локального выполнения одного run.
//
// Run не проходит через планировщик и не пишет историю:
// сигналы уходят только в лог и метрики.
func NewRunCmd(configFn func() (*config.Config, error), outputFn func() *Output) *cobra.Command {
	var maxIterations int
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one dispatch run locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFn()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("max-iterations") {
				cfg.Job.MaxIterations = maxIterations
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			outcome, err := runOnce(ctx, cfg, slog.Default())
			if err != nil {
				return err
			}

			outputFn().Outcome(outcome)
			if !outcome.IsSuccess() {
				return ErrRunFailed
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Override job.max_iterations")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the run after this duration (0 = no limit)")

	return cmd
}

// runOnce выполняет один run с логированием и метриками.
func runOnce(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.Outcome, error) {
	client, err := referral.NewClient(referral.Config{
		BaseURL:      cfg.Referral.BaseURL,
		APIKey:       cfg.Referral.APIKey,
		APIKeyHeader: cfg.Referral.APIKeyHeader,
		Timeout:      cfg.Timeout(),
	})
	if err != nil {
		return domain.Outcome{}, err
	}

	orch := dispatch.New(dispatch.Config{Client: client, Logger: logger})

	now := time.Now()
	inv := domain.Invocation{
		Job:         cfg.Job.Name,
		Reason:      scheduler.ReasonManual,
		ScheduledAt: now,
		StartedAt:   now,
	}
	reporter := heartbeat.Multi{
		heartbeat.NewLogReporter(logger),
		heartbeat.NewMetricsReporter(),
	}

	return orch.Run(ctx, cfg.RunConfiguration(), inv, reporter), nil
}
