package heartbeat

import (
	"context"
	"time"

	"github.com/shaiso/Dispatch/internal/domain"
	"github.com/shaiso/Dispatch/internal/telemetry"
)

// MetricsReporter считает runs и их длительность.
type MetricsReporter struct {
	now     func() time.Time
	started time.Time
}

// NewMetricsReporter создаёт MetricsReporter для одного run.
func NewMetricsReporter() *MetricsReporter {
	return &MetricsReporter{now: time.Now}
}

// Started реализует Reporter.
func (r *MetricsReporter) Started(context.Context) {
	r.started = r.now()
	telemetry.RunsStarted.Inc()
}

// Succeeded реализует Reporter.
func (r *MetricsReporter) Succeeded(context.Context, string) {
	r.finish(domain.RunStatusSucceeded)
}

// Failed реализует Reporter.
func (r *MetricsReporter) Failed(context.Context, string) {
	r.finish(domain.RunStatusFailed)
}

func (r *MetricsReporter) finish(status domain.RunStatus) {
	telemetry.RunsTotal.WithLabelValues(string(status)).Inc()
	if !r.started.IsZero() {
		telemetry.RunDuration.Observe(r.now().Sub(r.started).Seconds())
	}
}
