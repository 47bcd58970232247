// Package forwarding runs the per-message pipeline: run state, source
// allow-list, dedup, keyword match, then forward or drop.
package forwarding

import (
	"context"

	"github.com/rs/zerolog"

	"alertBot/internal/app/events"
	"alertBot/internal/domain"
	"alertBot/internal/usecase/filter"
)

type Result int

const (
	DroppedStopped Result = iota
	DroppedUnwatched
	DroppedDuplicate
	DroppedEmpty
	NoMatch
	Forwarded
	ForwardFailed
)

var resultNames = [...]string{
	DroppedStopped:   "dropped_stopped",
	DroppedUnwatched: "dropped_unwatched",
	DroppedDuplicate: "dropped_duplicate",
	DroppedEmpty:     "dropped_empty",
	NoMatch:          "no_match",
	Forwarded:        "forwarded",
	ForwardFailed:    "forward_failed",
}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "unknown"
}

type ConfigSource interface {
	Snapshot() domain.Configuration
}

// SeenSet is the dedup cache; Observe records id and reports whether it was
// already there.
type SeenSet interface {
	Observe(id int64) bool
}

type FailureNotifier interface {
	ForwardFailed(ctx context.Context, msg domain.Message, destination int64, keyword string, err error)
}

type Publisher interface {
	Publish(topic string, payload any)
}

type Config struct {
	Settings ConfigSource
	Seen     SeenSet
	Out      domain.MessageForwarder
	Notifier FailureNotifier
	Bus      Publisher
	Logger   zerolog.Logger
}

type Forwarder struct {
	settings ConfigSource
	seen     SeenSet
	out      domain.MessageForwarder
	notifier FailureNotifier
	bus      Publisher
	log      zerolog.Logger
	match    func(keywords []string, text string) (string, bool)
}

func NewForwarder(cfg Config) *Forwarder {
	return &Forwarder{
		settings: cfg.Settings,
		seen:     cfg.Seen,
		out:      cfg.Out,
		notifier: cfg.Notifier,
		bus:      cfg.Bus,
		log:      cfg.Logger.With().Str("component", "forwarder").Logger(),
		match:    filter.Evaluate,
	}
}

// Handle never returns an error: failures are logged and reported to the
// operator, and the message is not retried.
func (f *Forwarder) Handle(ctx context.Context, msg domain.Message) Result {
	cfg := f.settings.Snapshot()

	if !cfg.IsRunning {
		return DroppedStopped
	}
	if !cfg.HasSource(msg.ChatID) {
		return DroppedUnwatched
	}
	// Marked as seen before matching, so a message that matches nothing is
	// not evaluated again either.
	if f.seen.Observe(msg.ID) {
		return DroppedDuplicate
	}
	if msg.Text == "" {
		return DroppedEmpty
	}

	keyword, ok := f.match(cfg.Keywords, msg.Text)
	if !ok {
		return NoMatch
	}

	f.log.Info().
		Str("keyword", keyword).
		Int64("source_id", msg.ChatID).
		Int64("message_id", msg.ID).
		Str("preview", events.Preview(msg.Text)).
		Msg("keyword match found, forwarding message")

	if err := f.out.ForwardMessage(ctx, msg.Platform, cfg.DestinationChannel, msg.ChatID, msg.ID); err != nil {
		if f.notifier != nil {
			f.notifier.ForwardFailed(ctx, msg, cfg.DestinationChannel, keyword, err)
		} else {
			f.log.Error().Err(err).Int64("message_id", msg.ID).Msg("forwarding failed")
		}
		return ForwardFailed
	}

	if f.bus != nil {
		f.bus.Publish(events.TopicForwardMatched, events.NewForwardDTO(msg, cfg.DestinationChannel, keyword, nil))
	}
	return Forwarded
}
