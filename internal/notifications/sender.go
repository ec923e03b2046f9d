package notifications

import (
	"context"

	"barbershop/pkg/logger"
)

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the log instead of delivering them.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.log.Info("Notification sent",
		"kind", n.Kind,
		"booking_id", n.BookingID,
		"user_id", n.UserID,
		"to", n.To,
		"subject", n.Subject,
	)
	return nil
}
