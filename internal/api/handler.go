package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Dispatch/internal/domain"
	"github.com/shaiso/Dispatch/internal/repo"
	"github.com/shaiso/Dispatch/internal/telemetry"
)

// RunStore — чтение истории runs (repo.RunRepo).
type RunStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)
	List(ctx context.Context, filter repo.RunFilter) ([]domain.Run, error)
}

// Trigger — планировщик, принимающий внеплановые runs (scheduler.Scheduler).
type Trigger interface {
	Trigger(reason string) bool
	NextDue() time.Time
	IsLeader() bool
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	runs    RunStore
	trigger Trigger
	job     string
	logger  *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Runs    RunStore // nil — история отключена
	Trigger Trigger
	Job     string
	Logger  *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		runs:    cfg.Runs,
		trigger: cfg.Trigger,
		job:     cfg.Job,
		logger:  logger,
	}
}

// requestLogger — логгер запроса с request_id (см. RequestContext).
func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	return telemetry.FromContextOr(r.Context(), h.logger)
}
