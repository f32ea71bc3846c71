package heartbeat

import (
	"context"
	"log/slog"

	"github.com/shaiso/Dispatch/internal/domain"
)

// Reporter — получатель сигналов о жизненном цикле run.
type Reporter interface {
	Started(ctx context.Context)
	Succeeded(ctx context.Context, message string)
	Failed(ctx context.Context, message string)
}

// Report передаёт терминальный Outcome в Reporter.
func Report(ctx context.Context, r Reporter, outcome domain.Outcome) {
	if outcome.IsSuccess() {
		r.Succeeded(ctx, outcome.Message)
		return
	}
	r.Failed(ctx, outcome.Message)
}

// Multi рассылает сигналы всем Reporter по порядку.
type Multi []Reporter

// Started реализует Reporter.
func (m Multi) Started(ctx context.Context) {
	for _, r := range m {
		r.Started(ctx)
	}
}

// Succeeded реализует Reporter.
func (m Multi) Succeeded(ctx context.Context, message string) {
	for _, r := range m {
		r.Succeeded(ctx, message)
	}
}

// Failed реализует Reporter.
func (m Multi) Failed(ctx context.Context, message string) {
	for _, r := range m {
		r.Failed(ctx, message)
	}
}

// LogReporter пишет сигналы в лог.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter создаёт LogReporter. nil logger — slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

// Started реализует Reporter.
func (r *LogReporter) Started(ctx context.Context) {
	r.logger.InfoContext(ctx, "dispatch run started")
}

// Succeeded реализует Reporter.
func (r *LogReporter) Succeeded(ctx context.Context, message string) {
	r.logger.InfoContext(ctx, "dispatch run succeeded", "message", message)
}

// Failed реализует Reporter.
func (r *LogReporter) Failed(ctx context.Context, message string) {
	r.logger.ErrorContext(ctx, "dispatch run failed", "message", message)
}
