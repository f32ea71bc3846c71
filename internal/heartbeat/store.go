package heartbeat

import (
	"context"
	"log/slog"

	"github.com/shaiso/Dispatch/internal/domain"
)

// RunStore — хранилище истории runs (repo.RunRepo).
type RunStore interface {
	Create(ctx context.Context, run *domain.Run) error
	Finish(ctx context.Context, run *domain.Run) error
}

// StoreReporter ведёт запись Run в хранилище.
//
// Ошибки хранилища только логируются: история не должна
// прерывать рассылку.
type StoreReporter struct {
	store  RunStore
	run    *domain.Run
	logger *slog.Logger
}

// NewStoreReporter создаёт StoreReporter для одного run.
func NewStoreReporter(store RunStore, run *domain.Run, logger *slog.Logger) *StoreReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &StoreReporter{store: store, run: run, logger: logger}
}

// Started реализует Reporter.
func (r *StoreReporter) Started(ctx context.Context) {
	if err := r.store.Create(ctx, r.run); err != nil {
		r.logger.ErrorContext(ctx, "failed to save run", "run_id", r.run.ID, "error", err)
	}
}

// Succeeded реализует Reporter.
func (r *StoreReporter) Succeeded(ctx context.Context, message string) {
	r.run.MarkSucceeded(message)
	r.finish(ctx)
}

// Failed реализует Reporter.
func (r *StoreReporter) Failed(ctx context.Context, message string) {
	r.run.MarkFailed(message)
	r.finish(ctx)
}

func (r *StoreReporter) finish(ctx context.Context) {
	if err := r.store.Finish(ctx, r.run); err != nil {
		r.logger.ErrorContext(ctx, "failed to finish run", "run_id", r.run.ID, "error", err)
	}
}
