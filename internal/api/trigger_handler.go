package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/shaiso/Dispatch/internal/scheduler"
)

// TriggerRun ставит внеплановый run в очередь планировщика.
// POST /api/v1/trigger
//
// 202 — принят, 409 — триггер уже ожидает выполнения.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid request body")
		return
	}
	if req.Reason == "" {
		req.Reason = scheduler.ReasonManual
	}

	if !h.trigger.Trigger(req.Reason) {
		conflict(w, "a run is already queued")
		return
	}

	h.requestLogger(r).Info("run triggered", "reason", req.Reason)
	writeTriggered(w, h.job, req.Reason)
}

// GetSchedule возвращает время следующего планового run.
// GET /api/v1/schedule
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	writeSchedule(w, ScheduleResponse{
		Job:     h.job,
		NextDue: h.trigger.NextDue(),
		Leader:  h.trigger.IsLeader(),
	})
}
