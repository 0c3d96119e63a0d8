package notify

import (
	"context"
	"time"

	"ai-lecture-be/internal/pkg/logger"
	pkgEvents "ai-lecture-be/pkg/events"
	pktNats "ai-lecture-be/pkg/nats"
)

// Notifier is the collaborator-facing completion notification interface.
// All calls are best effort: failures are logged, never propagated into the
// session state machine.
type Notifier interface {
	LectureInitialized(ctx context.Context, lectureID int64, chapterCount int)
	LectureCompleted(ctx context.Context, lectureID int64, questionCount int)
	LectureFailed(ctx context.Context, lectureID int64, reason string)
	LectureCancelled(ctx context.Context, lectureID int64)
}

// NatsNotifier publishes lecture lifecycle events to the NATS bus.
type NatsNotifier struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewNatsNotifier(publisher *pktNats.Publisher, logger logger.ILogger) *NatsNotifier {
	return &NatsNotifier{publisher: publisher, logger: logger}
}

func (n *NatsNotifier) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if n.publisher == nil {
		return
	}

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}

	if err := n.publisher.Publish(ctx, evt); err != nil {
		n.logger.Error("NOTIFY", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (n *NatsNotifier) LectureInitialized(ctx context.Context, lectureID int64, chapterCount int) {
	n.publish(ctx, "LECTURE_INITIALIZED", map[string]interface{}{
		"lecture_id":    lectureID,
		"chapter_count": chapterCount,
	})
}

func (n *NatsNotifier) LectureCompleted(ctx context.Context, lectureID int64, questionCount int) {
	n.publish(ctx, "LECTURE_COMPLETED", map[string]interface{}{
		"lecture_id":     lectureID,
		"question_count": questionCount,
	})
}

func (n *NatsNotifier) LectureFailed(ctx context.Context, lectureID int64, reason string) {
	n.publish(ctx, "LECTURE_FAILED", map[string]interface{}{
		"lecture_id": lectureID,
		"reason":     reason,
	})
}

func (n *NatsNotifier) LectureCancelled(ctx context.Context, lectureID int64) {
	n.publish(ctx, "LECTURE_CANCELLED", map[string]interface{}{
		"lecture_id": lectureID,
	})
}

// NopNotifier is used when no NATS connection is available.
type NopNotifier struct{}

func (NopNotifier) LectureInitialized(context.Context, int64, int) {}
func (NopNotifier) LectureCompleted(context.Context, int64, int)   {}
func (NopNotifier) LectureFailed(context.Context, int64, string)   {}
func (NopNotifier) LectureCancelled(context.Context, int64)        {}
