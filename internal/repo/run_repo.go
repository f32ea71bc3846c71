package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/Dispatch/internal/domain"
)

const defaultListLimit = 50

// RunRepo — репозиторий истории dispatch runs.
type RunRepo struct {
	pool *pgxpool.Pool
}

// NewRunRepo создаёт новый RunRepo.
func NewRunRepo(pool *pgxpool.Pool) *RunRepo {
	return &RunRepo{pool: pool}
}

// Create сохраняет начатый run.
func (r *RunRepo) Create(ctx context.Context, run *domain.Run) error {
	query := `
		INSERT INTO dispatch_runs (id, job, reason, status, message, scheduled_at, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Job,
		run.Reason,
		run.Status,
		nullString(run.Message),
		run.ScheduledAt,
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert dispatch run: %w", err)
	}
	return nil
}

// Finish записывает терминальный статус run.
// Возвращает ErrInvalidState, если run уже завершён.
func (r *RunRepo) Finish(ctx context.Context, run *domain.Run) error {
	if !run.Status.IsTerminal() {
		return fmt.Errorf("%w: status %s is not terminal", ErrInvalidState, run.Status)
	}

	query := `
		UPDATE dispatch_runs
		SET status = $2, message = $3, finished_at = $4
		WHERE id = $1 AND finished_at IS NULL
	`
	result, err := r.pool.Exec(ctx, query,
		run.ID,
		run.Status,
		nullString(run.Message),
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("update dispatch run: %w", err)
	}
	if result.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, run.ID); err != nil {
			return err
		}
		return fmt.Errorf("%w: run %s already finished", ErrInvalidState, run.ID)
	}
	return nil
}

// GetByID возвращает run по ID.
func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Run, error) {
	query := `
		SELECT id, job, reason, status, message, scheduled_at, started_at, finished_at
		FROM dispatch_runs
		WHERE id = $1
	`
	return scanRun(r.pool.QueryRow(ctx, query, id))
}

// RunFilter — параметры фильтрации runs.
type RunFilter struct {
	Status domain.RunStatus
	Limit  int
	Offset int
}

// List возвращает runs, новые первыми.
func (r *RunRepo) List(ctx context.Context, filter RunFilter) ([]domain.Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, job, reason, status, message, scheduled_at, started_at, finished_at
		FROM dispatch_runs
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query,
		nullString(string(filter.Status)),
		limit,
		filter.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list dispatch runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// scanRun сканирует одну строку в Run. Работает и с pgx.Row, и с pgx.Rows.
func scanRun(row pgx.Row) (*domain.Run, error) {
	var run domain.Run
	var message *string

	err := row.Scan(
		&run.ID,
		&run.Job,
		&run.Reason,
		&run.Status,
		&message,
		&run.ScheduledAt,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan dispatch run: %w", err)
	}

	if message != nil {
		run.Message = *message
	}
	return &run, nil
}

// nullString возвращает nil для пустой строки (для NULL в БД).
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
