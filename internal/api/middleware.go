package api

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Dispatch/internal/telemetry"
)

// HeaderRequestID — заголовок корреляции запроса.
// Принимается от клиента, иначе генерируется, и всегда возвращается в ответе.
const HeaderRequestID = "X-Request-ID"

// Middleware — обёртка для http.Handler.
type Middleware func(http.Handler) http.Handler

// wrap оборачивает обработчик API.
// RequestContext снаружи: он видит статус, выставленный Recovery после паники.
func (h *Handler) wrap(fn http.HandlerFunc) http.Handler {
	return RequestContext(h.logger, h.job)(Recovery(h.logger)(fn))
}

// RequestContext кладёт в контекст запроса логгер с job и request_id,
// а после ответа пишет access-лог и метрику по маршруту.
func RequestContext(logger *slog.Logger, job string) Middleware {
	base := telemetry.WithJob(logger, job)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, id)

			reqLogger := base.With("request_id", id)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r.WithContext(telemetry.WithLogger(r.Context(), reqLogger)))

			// r.Pattern выставляет ServeMux до вызова обработчика
			route := r.Pattern
			if route == "" {
				route = r.URL.Path
			}
			telemetry.APIRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()

			reqLogger.Log(r.Context(), accessLevel(rec.status), "http request",
				"method", r.Method,
				"route", route,
				"status", rec.status,
				"bytes", rec.bytes,
				"duration", time.Since(start),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

func accessLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Recovery превращает панику обработчика в 500.
// Логирует через логгер запроса, если он есть.
func Recovery(fallback *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					telemetry.FromContextOr(r.Context(), fallback).Error("panic recovered",
						"panic", p,
						"stack", string(debug.Stack()),
					)
					writeError(w, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder запоминает код и размер ответа.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (rec *statusRecorder) WriteHeader(status int) {
	if !rec.wroteHeader {
		rec.status = status
		rec.wroteHeader = true
	}
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	rec.wroteHeader = true
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n
	return n, err
}
