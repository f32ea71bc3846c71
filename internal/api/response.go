package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shaiso/Dispatch/internal/domain"
	"github.com/shaiso/Dispatch/internal/repo"
)

// ErrorCode — машинный код ошибки в ответе API.
type ErrorCode string

const (
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeConflict      ErrorCode = "CONFLICT"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrCodeUnavailable   ErrorCode = "UNAVAILABLE"
)

// Ответы API имеют вид {"data": ...} либо {"error": {...}}.
// Список runs дополнительно несёт "page" с окном выборки.

// writeJSON пишет тело с кодом status.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeRun отвечает одним run.
func writeRun(w http.ResponseWriter, run domain.Run) {
	writeJSON(w, http.StatusOK, DataResponse[RunResponse]{Data: RunFromDomain(run)})
}

// writeRuns отвечает страницей истории. Окно берётся из фильтра запроса.
func writeRuns(w http.ResponseWriter, runs []domain.Run, filter repo.RunFilter) {
	data := make([]RunResponse, len(runs))
	for i, run := range runs {
		data[i] = RunFromDomain(run)
	}

	writeJSON(w, http.StatusOK, RunListResponse{
		Data: data,
		Page: Page{Limit: filter.Limit, Offset: filter.Offset, Count: len(data)},
	})
}

// writeTriggered отвечает 202: run поставлен в очередь планировщика,
// но ещё не начат.
func writeTriggered(w http.ResponseWriter, job, reason string) {
	writeJSON(w, http.StatusAccepted, DataResponse[TriggerResponse]{
		Data: TriggerResponse{Job: job, Reason: reason},
	})
}

// writeSchedule отвечает состоянием расписания.
func writeSchedule(w http.ResponseWriter, schedule ScheduleResponse) {
	writeJSON(w, http.StatusOK, DataResponse[ScheduleResponse]{Data: schedule})
}

// writeError отвечает ошибкой. request_id берётся из уже выставленного
// заголовка ответа (см. RequestContext).
func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:      code,
			Message:   message,
			RequestID: w.Header().Get(HeaderRequestID),
		},
	})
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func notFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func conflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, ErrCodeConflict, message)
}

func unavailable(w http.ResponseWriter, message string) {
	writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, message)
}

// internalError логирует причину и отвечает 500 без подробностей.
func internalError(w http.ResponseWriter, logger *slog.Logger, err error) {
	logger.Error("internal error", "error", err)
	writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
}

// storeError отвечает на ошибку хранилища истории.
// Возвращает false, если err == nil и ответ ещё не записан.
func storeError(w http.ResponseWriter, logger *slog.Logger, err error, notFoundMsg string) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, repo.ErrNotFound):
		notFound(w, notFoundMsg)
	case errors.Is(err, context.DeadlineExceeded):
		logger.Warn("run history query timed out", "error", err)
		unavailable(w, "run history timed out")
	default:
		internalError(w, logger, err)
	}
	return true
}
