package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shaiso/Dispatch/internal/domain"
	"github.com/shaiso/Dispatch/internal/referral"
)

// SendStepResult — результат успешного send-шага.
type SendStepResult struct {
	SentCount   int
	FailedCount int

	// NothingSent — API ответил 204 или nothingToSend=true.
	NothingSent bool
}

// sendStep вызывает send-эндпоинт и классифицирует ответ.
func (o *Orchestrator) sendStep(ctx context.Context, cfg domain.RunConfiguration, logger *slog.Logger) (SendStepResult, error) {
	resp, err := o.client.Post(ctx, cfg.SendPath)
	if err != nil {
		return SendStepResult{}, transportError(cfg.SendPath, err)
	}

	result, err := ClassifySend(cfg.SendPath, resp)
	if err != nil {
		logStepError(logger, err)
		return SendStepResult{}, err
	}

	if result.NothingSent {
		logger.Info("Zero questionnaires to send.")
	}
	return result, nil
}

// ClassifySend разбирает ответ send-эндпоинта.
//
//   - 204 или nothingToSend   → NothingSent, нули
//   - не 2xx                  → ErrHTTPStatus
//   - 2xx, тело пустое/битое  → ErrMalformedResponse
//   - иначе                   → счётчики из тела
func ClassifySend(path string, resp *referral.Response) (SendStepResult, error) {
	if resp.IsNoContent() {
		return SendStepResult{NothingSent: true}, nil
	}

	if !resp.IsSuccess() {
		return SendStepResult{}, statusError(path, resp.StatusName(), string(resp.Body))
	}

	var batch domain.SendBatchResult
	if err := decodeBody(resp.Body, &batch); err != nil {
		return SendStepResult{}, &StepError{
			Path:    path,
			Kind:    ErrMalformedResponse,
			Message: fmt.Sprintf("POST to '%s' - invalid response body.", path),
			Err:     err,
		}
	}

	if batch.NothingToSend {
		return SendStepResult{NothingSent: true}, nil
	}

	return SendStepResult{SentCount: batch.SentCount, FailedCount: batch.FailedCount}, nil
}
