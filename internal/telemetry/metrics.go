package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dispatch"

var (
	// RunsTotal — количество завершённых runs по статусу.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Total dispatch runs by terminal status",
	}, []string{"status"})

	// RunsStarted — количество начатых runs.
	RunsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_started_total",
		Help:      "Total dispatch runs started",
	})

	// RunDuration — длительность run.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of dispatch runs",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	})

	// RunIterations — количество циклов create/send за run.
	RunIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_iterations",
		Help:      "Create/send cycles performed per run",
		Buckets:   prometheus.LinearBuckets(1, 1, 15),
	})

	// Questionnaires — анкеты по результату: created, sent, failed.
	Questionnaires = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questionnaires_total",
		Help:      "Questionnaires processed by result",
	}, []string{"result"})

	// ReferralRequests — запросы к Referral API по пути и коду ответа.
	ReferralRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "referral_requests_total",
		Help:      "Requests to the referral API by path and status code",
	}, []string{"path", "code"})

	// ReferralRequestDuration — длительность запросов к Referral API.
	ReferralRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "referral_request_duration_seconds",
		Help:      "Duration of requests to the referral API",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path"})

	// APIRequests — запросы к API планировщика по маршруту и коду ответа.
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Requests to the scheduler API by route and status code",
	}, []string{"route", "code"})
)

// ObserveReferralRequest записывает результат запроса к Referral API.
// code = 0 означает транспортную ошибку.
func ObserveReferralRequest(path string, code int, elapsed time.Duration) {
	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}
	ReferralRequests.WithLabelValues(path, label).Inc()
	ReferralRequestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}
