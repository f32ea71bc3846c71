package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes регистрирует все маршруты API.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Служебные
	mux.HandleFunc("GET /healthz", Healthz)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Runs
	mux.Handle("GET /api/v1/runs", h.wrap(h.ListRuns))
	mux.Handle("GET /api/v1/runs/{id}", h.wrap(h.GetRun))

	// Расписание
	mux.Handle("POST /api/v1/trigger", h.wrap(h.TriggerRun))
	mux.Handle("GET /api/v1/schedule", h.wrap(h.GetSchedule))
}

// Healthz — liveness probe.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
