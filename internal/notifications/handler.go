package notifications

import (
	"context"
	"errors"
	"time"

	"barbershop/pkg/cache"
	"barbershop/pkg/client"
	"barbershop/pkg/kafka"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"
)

// deliveredTTL must outlive the consumer's retry window for one message.
const deliveredTTL = 24 * time.Hour

type Handler struct {
	users     client.UserDirectory
	sender    Sender
	delivered cache.Cache
	log       *logger.Logger
}

// NewHandler records each sent draft in delivered, so a retried event only
// sends what is still missing.
func NewHandler(users client.UserDirectory, sender Sender, delivered cache.Cache, log *logger.Logger) *Handler {
	return &Handler{
		users:     users,
		sender:    sender,
		delivered: delivered,
		log:       log,
	}
}

// Handle is a kafka.MessageHandler. Undecodable payloads are permanent
// failures; directory and sender failures are retried by the consumer.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("failed to decode booking event", err)
	}
	if event.BookingID == "" {
		return kafka.NewPermanentError("booking event without booking id", nil)
	}

	for _, d := range plan(event) {
		key := deliveredKey(event, d)
		var sent bool
		if key != "" && h.delivered.Get(ctx, key, &sent) == nil {
			h.log.Debug("Notification already sent", "kind", d.kind, "booking_id", event.BookingID)
			continue
		}
		if err := h.deliver(ctx, event, d); err != nil {
			return err
		}
		if key == "" {
			continue
		}
		if err := h.delivered.Set(ctx, key, true, deliveredTTL); err != nil {
			h.log.Warn("Failed to record sent notification", "key", key, "error", err)
		}
	}
	return nil
}

// deliveredKey is empty for events without an id; those are never deduplicated.
func deliveredKey(event model.BookingEvent, d draft) string {
	if event.ID == "" {
		return ""
	}
	return "notified:" + event.ID + ":" + string(d.kind) + ":" + d.userID
}

func (h *Handler) deliver(ctx context.Context, event model.BookingEvent, d draft) error {
	profile, err := h.users.GetUser(ctx, d.userID)
	if err != nil {
		if errors.Is(err, client.ErrUserNotFound) {
			h.log.Warn("Skipping notification, user not found",
				"kind", d.kind,
				"booking_id", event.BookingID,
				"user_id", d.userID,
			)
			return nil
		}
		return kafka.NewTransientError("failed to look up recipient", err).
			WithDetail("user_id", d.userID)
	}
	if profile.Email == "" {
		h.log.Warn("Skipping notification, user has no email",
			"kind", d.kind,
			"booking_id", event.BookingID,
			"user_id", d.userID,
		)
		return nil
	}

	subject, body := d.render(profile.FullName)
	n := Notification{
		Kind:      d.kind,
		BookingID: event.BookingID,
		UserID:    d.userID,
		To:        profile.Email,
		Subject:   subject,
		Body:      body,
	}

	if err := h.sender.Send(ctx, n); err != nil {
		return kafka.NewTransientError("failed to send notification", err).
			WithDetail("kind", string(d.kind))
	}
	return nil
}
