// Package notify delivers operator alerts over Telegram and Discord. The bot
// uses it for the events a human must act on, above all a stranded round trip
// that left funds in an intermediate asset.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Event names emitted by the trading loops.
const (
	EventRoundTripCompleted = "round_trip_completed"
	EventRoundTripStranded  = "round_trip_stranded"
	EventOrderCompleted     = "order_completed"
	EventBotStarted         = "bot_started"
)

// Sender is one delivery channel.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	// Name identifies the channel in logs, e.g. "telegram".
	Name() string
}

// Notifier fans a notification out to every configured Sender. An allow-list
// of event names filters what gets delivered; an empty list allows
// everything.
type Notifier struct {
	senders []Sender
	events  map[string]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier delivering to the given senders, forwarding
// only the listed event names (all events when the list is empty).
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Notify delivers to every sender when the event passes the filter. A
// sender failure never blocks the remaining senders.
func (n *Notifier) Notify(ctx context.Context, event, title, message string) error {
	if len(n.events) > 0 && !n.events[event] {
		n.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", event),
		)
		return nil
	}

	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		n.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", title),
		)
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
