package heartbeat

import (
	"context"
	"log/slog"

	"github.com/shaiso/Dispatch/internal/domain"
	"github.com/shaiso/Dispatch/internal/mq"
)

// HeartbeatPublisher — отправка heartbeat-событий (mq.Publisher).
type HeartbeatPublisher interface {
	PublishHeartbeat(ctx context.Context, msgType mq.MessageType, payload mq.HeartbeatPayload) error
}

// PublishReporter публикует сигналы run в RabbitMQ.
// Ошибки публикации только логируются.
type PublishReporter struct {
	publisher HeartbeatPublisher
	run       *domain.Run
	logger    *slog.Logger
}

// NewPublishReporter создаёт PublishReporter для одного run.
func NewPublishReporter(publisher HeartbeatPublisher, run *domain.Run, logger *slog.Logger) *PublishReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishReporter{publisher: publisher, run: run, logger: logger}
}

// Started реализует Reporter.
func (r *PublishReporter) Started(ctx context.Context) {
	r.publish(ctx, mq.MessageTypeStarted, "")
}

// Succeeded реализует Reporter.
func (r *PublishReporter) Succeeded(ctx context.Context, message string) {
	r.publish(ctx, mq.MessageTypeSucceeded, message)
}

// Failed реализует Reporter.
func (r *PublishReporter) Failed(ctx context.Context, message string) {
	r.publish(ctx, mq.MessageTypeFailed, message)
}

func (r *PublishReporter) publish(ctx context.Context, msgType mq.MessageType, message string) {
	payload := mq.HeartbeatPayload{
		RunID:   r.run.ID,
		Job:     r.run.Job,
		Message: message,
	}
	if err := r.publisher.PublishHeartbeat(ctx, msgType, payload); err != nil {
		r.logger.WarnContext(ctx, "failed to publish heartbeat", "type", msgType, "run_id", r.run.ID, "error", err)
	}
}
