// Package notifications tells the operator about things that went wrong
// outside a command, such as a failed forward.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"alertBot/internal/app/events"
	"alertBot/internal/domain"
)

type Publisher interface {
	Publish(topic string, payload any)
}

type Config struct {
	Out           domain.OutgoingMessagePort
	Platform      domain.Platform
	ControlChatID int64
	// Repo is optional; when set every notification is also stored.
	Repo   domain.NotificationRepository
	Bus    Publisher
	Logger zerolog.Logger
}

type Notifier struct {
	out      domain.OutgoingMessagePort
	platform domain.Platform
	repo     domain.NotificationRepository
	bus      Publisher
	log      zerolog.Logger
	now      func() time.Time

	controlChatID atomic.Int64
}

func NewNotifier(cfg Config) *Notifier {
	n := &Notifier{
		out:      cfg.Out,
		platform: cfg.Platform,
		repo:     cfg.Repo,
		bus:      cfg.Bus,
		log:      cfg.Logger.With().Str("component", "notifications").Logger(),
		now:      time.Now,
	}
	n.controlChatID.Store(cfg.ControlChatID)
	return n
}

func (n *Notifier) SetControlChat(chatID int64) {
	n.controlChatID.Store(chatID)
}

// ForwardFailed logs a failed forward and notifies the operator with the
// source and the error. The message is not retried.
func (n *Notifier) ForwardFailed(ctx context.Context, msg domain.Message, destination int64, keyword string, err error) {
	ferr := &domain.ForwardError{SourceID: msg.ChatID, MessageID: msg.ID, Err: err}
	n.log.Error().
		Err(ferr).
		Int64("source_id", msg.ChatID).
		Str("source", msg.Source()).
		Int64("message_id", msg.ID).
		Int64("destination", destination).
		Msg("forwarding failed")

	if n.bus != nil {
		n.bus.Publish(events.TopicForwardFailed, events.NewForwardDTO(msg, destination, keyword, err))
	}

	notification := &domain.Notification{
		Type:      domain.NotificationForwardFailure,
		Platform:  msg.Platform,
		SourceID:  msg.ChatID,
		MessageID: msg.ID,
		Message:   fmt.Sprintf("⚠️ Forwarding failed for message %d from %s: %v", msg.ID, sourceLabel(msg), err),
		Metadata: map[string]string{
			"keyword":     keyword,
			"destination": strconv.FormatInt(destination, 10),
		},
	}
	if err := n.Notify(ctx, notification); err != nil {
		n.log.Error().Err(err).Msg("failed to notify operator about forwarding failure")
	}
}

// Notify stores the notification (when a repository is configured) and sends
// it to the control chat. Both are attempted even if one fails.
func (n *Notifier) Notify(ctx context.Context, notification *domain.Notification) error {
	if notification == nil {
		return nil
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = n.now().UTC()
	}
	if notification.Platform == "" {
		notification.Platform = n.platform
	}

	var errs []error
	if n.repo != nil {
		if _, err := n.repo.SaveNotification(ctx, notification); err != nil {
			errs = append(errs, fmt.Errorf("store notification: %w", err))
		}
	}

	chatID := n.controlChatID.Load()
	switch {
	case n.out == nil:
		errs = append(errs, errors.New("notifications: no sender configured"))
	case chatID == 0:
		errs = append(errs, errors.New("notifications: control chat unknown"))
	default:
		if err := n.out.SendMessage(ctx, n.platform, chatID, notification.Message); err != nil {
			errs = append(errs, fmt.Errorf("send notification: %w", err))
		}
	}
	return errors.Join(errs...)
}

func sourceLabel(msg domain.Message) string {
	if src := msg.Source(); src != "" {
		return fmt.Sprintf("%s (%d)", src, msg.ChatID)
	}
	return strconv.FormatInt(msg.ChatID, 10)
}
