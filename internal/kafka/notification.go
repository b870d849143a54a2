package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 3 * time.Second

// NotificationEvent is the message carried on the notifications topic.
type NotificationEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func NewNotificationEvent(userID int64, subject, body string) NotificationEvent {
	return NotificationEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Subject:   subject,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

func DecodeNotification(msg kafka.Message) (NotificationEvent, error) {
	var event NotificationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return NotificationEvent{}, fmt.Errorf("decode notification: %w", err)
	}
	if event.UserID <= 0 {
		return NotificationEvent{}, fmt.Errorf("decode notification: missing user_id")
	}
	return event, nil
}

// Notifier publishes user notifications; services use it as their notification sink.
type Notifier struct {
	producer *Producer
	inflight sync.WaitGroup
}

func NewNotifier(producer *Producer) *Notifier {
	return &Notifier{producer: producer}
}

// Notify returns immediately and publishes in the background; failures are logged, not returned.
// Messages are keyed by user id, so each user maps to one partition.
func (n *Notifier) Notify(ctx context.Context, userID int64, subject, body string) error {
	event := NewNotificationEvent(userID, subject, body)
	ctx = context.WithoutCancel(ctx)

	n.inflight.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()

		if err := n.producer.Publish(ctx, strconv.FormatInt(userID, 10), event); err != nil {
			n.producer.logger.WarnContext(ctx, "notification not published",
				"user_id", userID, "subject", subject, "notification_id", event.ID, "error", err)
		}
	})
	return nil
}

// Wait blocks until every queued notification is published or has failed.
func (n *Notifier) Wait() {
	n.inflight.Wait()
}
