package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/shaiso/Dispatch/internal/domain"
	"github.com/shaiso/Dispatch/internal/repo"
)

const historyDisabled = "run history is disabled"

// ListRuns возвращает историю runs с фильтрацией.
// GET /api/v1/runs?status=...&limit=...&offset=...
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		unavailable(w, historyDisabled)
		return
	}

	filter := repo.RunFilter{}
	query := r.URL.Query()

	if s := query.Get("status"); s != "" {
		status, ok := domain.ParseRunStatus(s)
		if !ok {
			badRequest(w, "invalid status")
			return
		}
		filter.Status = status
	}

	var err error
	if filter.Limit, err = intParam(query.Get("limit"), 50); err != nil || filter.Limit < 1 {
		badRequest(w, "invalid limit")
		return
	}
	if filter.Offset, err = intParam(query.Get("offset"), 0); err != nil || filter.Offset < 0 {
		badRequest(w, "invalid offset")
		return
	}

	runs, err := h.runs.List(r.Context(), filter)
	if storeError(w, h.requestLogger(r), err, "") {
		return
	}

	writeRuns(w, runs, filter)
}

// GetRun возвращает run по ID.
// GET /api/v1/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		unavailable(w, historyDisabled)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		badRequest(w, "invalid run id")
		return
	}

	run, err := h.runs.GetByID(r.Context(), id)
	if storeError(w, h.requestLogger(r), err, "run not found") {
		return
	}

	writeRun(w, *run)
}

// intParam парсит целый query-параметр; пустая строка — def.
func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
