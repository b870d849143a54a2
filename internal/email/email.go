package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/roombooking/internal/domain"
	"github.com/Domenick1991/roombooking/internal/kafka"
	"github.com/Domenick1991/roombooking/internal/repository"
)

// Sender delivers notifications to the user's mailbox. Delivery is a structured log line;
// no SMTP relay is configured.
type Sender struct {
	users  repository.UserDirectory
	logger *slog.Logger
}

func NewSender(users repository.UserDirectory, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{users: users, logger: logger.With("component", "email")}
}

// Send logs and drops events whose recipient is unknown or has no email.
func (s *Sender) Send(ctx context.Context, event kafka.NotificationEvent) error {
	user, err := s.users.Get(ctx, event.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.WarnContext(ctx, "recipient not found", "user_id", event.UserID, "notification_id", event.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve recipient %d: %w", event.UserID, err)
	}
	if user.Email == "" {
		s.logger.WarnContext(ctx, "recipient has no email", "user_id", event.UserID, "notification_id", event.ID)
		return nil
	}

	s.logger.InfoContext(ctx, "email sent",
		"to", user.Email,
		"subject", event.Subject,
		"notification_id", event.ID,
		"body", event.Body,
	)
	return nil
}

// Notify lets the sender act as the notification sink directly when no broker is configured.
func (s *Sender) Notify(ctx context.Context, userID int64, subject, body string) error {
	return s.Send(ctx, kafka.NewNotificationEvent(userID, subject, body))
}
