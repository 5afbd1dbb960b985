package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"lendflow-backend/internal/domain/notification"
)

// EventProducer publishes the email/event side of a notification.
type EventProducer interface {
	PublishMessage(key, value []byte) error
}

// Dispatcher fans a lifecycle event out to the user's notification inbox and
// the event bus. At-most-effort: it never blocks the caller and failures are
// logged, not retried and never surfaced.
type Dispatcher struct {
	notifications notification.Repository
	producer      EventProducer
	log           *slog.Logger
	timeout       time.Duration
}

func NewDispatcher(repo notification.Repository, producer EventProducer, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		notifications: repo,
		producer:      producer,
		log:           log,
		timeout:       5 * time.Second,
	}
}

func (d *Dispatcher) Dispatch(userID string, kind notification.Kind, message string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.notifications.Create(ctx, &notification.Notification{
			UserID:  userID,
			Kind:    kind,
			Message: message,
		}); err != nil {
			d.log.Warn("notification write failed", "user_id", userID, "kind", kind, "err", err)
		}

		payload, _ := json.Marshal(map[string]string{
			"user_id": userID,
			"kind":    string(kind),
			"message": message,
		})
		if err := d.producer.PublishMessage([]byte(userID), payload); err != nil {
			d.log.Warn("notification event publish failed", "user_id", userID, "kind", kind, "err", err)
		}
	}()
}
