package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shaiso/Dispatch/internal/domain"
	"github.com/shaiso/Dispatch/internal/referral"
)

// Статус и тело, которые подставляются в сообщение при нечитаемом
// ответе create, независимо от фактического кода.
const (
	malformedCreateStatus = "BadRequest"
	malformedCreateBody   = ""
)

// CreateStepResult — результат успешного create-шага.
type CreateStepResult struct {
	// HasMore — false только когда create вернул 204.
	HasMore      bool
	CreatedCount int
}

// createStep вызывает create-эндпоинт и классифицирует ответ.
func (o *Orchestrator) createStep(ctx context.Context, cfg domain.RunConfiguration, logger *slog.Logger) (CreateStepResult, error) {
	resp, err := o.client.Post(ctx, cfg.CreatePath)
	if err != nil {
		return CreateStepResult{}, transportError(cfg.CreatePath, err)
	}

	result, err := ClassifyCreate(cfg.CreatePath, resp)
	var stepErr *StepError
	if errors.As(err, &stepErr) && errors.Is(stepErr.Kind, ErrBatchErrors) {
		logger.Info(fmt.Sprintf("Number of questionnaires created: %d.", stepErr.Created))
	}
	if err != nil {
		logStepError(logger, err)
		return CreateStepResult{}, err
	}
	return result, nil
}

// ClassifyCreate разбирает ответ create-эндпоинта.
//
//   - 204                     → HasMore=false
//   - не 2xx                  → ErrHTTPStatus
//   - 2xx, тело пустое/битое  → ErrMalformedResponse (фиксированные статус и тело)
//   - errorCount > 0          → ErrBatchErrors, созданное — в StepError.Created
//   - иначе                   → HasMore=true
//
// При ошибке результат всегда нулевой.
func ClassifyCreate(path string, resp *referral.Response) (CreateStepResult, error) {
	if resp.IsNoContent() {
		return CreateStepResult{HasMore: false}, nil
	}

	if !resp.IsSuccess() {
		return CreateStepResult{}, statusError(path, resp.StatusName(), string(resp.Body))
	}

	var batch domain.CreateBatchResult
	if err := decodeBody(resp.Body, &batch); err != nil {
		return CreateStepResult{}, &StepError{
			Path:    path,
			Kind:    ErrMalformedResponse,
			Message: fmt.Sprintf("POST to '%s' - '%s': '%s'.", path, malformedCreateStatus, malformedCreateBody),
			Err:     err,
		}
	}

	if batch.HasErrors() {
		return CreateStepResult{}, &StepError{
			Path: path,
			Kind: ErrBatchErrors,
			Message: fmt.Sprintf("POST to '%s' - %d errors: '%s'.",
				path, batch.ErrorCount, strings.Join(batch.Errors, ", ")),
			Created: batch.CreatedCount,
		}
	}

	return CreateStepResult{HasMore: true, CreatedCount: batch.CreatedCount}, nil
}

// decodeBody декодирует JSON тело. Пустое тело и null — ошибка.
func decodeBody(body []byte, v any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ErrEmptyBody
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return fmt.Errorf("decode response body: %w", ErrNullBody)
	}
	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}
