package events

import (
	"time"

	"github.com/google/uuid"

	"alertBot/internal/domain"
)

const previewLength = 60

// Envelope wraps every payload sent to websocket clients.
type Envelope struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

func NewEnvelope(topic string, data any) Envelope {
	return Envelope{
		ID:        uuid.NewString(),
		Topic:     topic,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Data:      data,
	}
}

// ForwardDTO describes a matched message and, when forwarding failed, why.
type ForwardDTO struct {
	Platform    string `json:"platform"`
	SourceID    int64  `json:"source_id"`
	Source      string `json:"source,omitempty"`
	MessageID   int64  `json:"message_id"`
	Destination int64  `json:"destination"`
	Keyword     string `json:"keyword"`
	Preview     string `json:"preview"`
	Error       string `json:"error,omitempty"`
}

func NewForwardDTO(msg domain.Message, destination int64, keyword string, err error) ForwardDTO {
	dto := ForwardDTO{
		Platform:    string(msg.Platform),
		SourceID:    msg.ChatID,
		Source:      msg.Source(),
		MessageID:   msg.ID,
		Destination: destination,
		Keyword:     keyword,
		Preview:     Preview(msg.Text),
	}
	if err != nil {
		dto.Error = err.Error()
	}
	return dto
}

type ConfigDTO struct {
	IsRunning          bool     `json:"is_running"`
	SourceChannels     []int64  `json:"source_channels"`
	SourceChannelNames []string `json:"source_channel_names"`
	Keywords           []string `json:"keywords"`
	Admins             int      `json:"admins"`
	DestinationChannel int64    `json:"destination_channel"`
}

// NewConfigDTO leaves admin ids out of anything sent to observers.
func NewConfigDTO(cfg domain.Configuration) ConfigDTO {
	cfg = cfg.Clone()
	return ConfigDTO{
		IsRunning:          cfg.IsRunning,
		SourceChannels:     cfg.SourceChannels,
		SourceChannelNames: cfg.SourceChannelNames,
		Keywords:           cfg.Keywords,
		Admins:             len(cfg.Admins),
		DestinationChannel: cfg.DestinationChannel,
	}
}

type CommandDTO struct {
	Name    string `json:"name"`
	UserID  int64  `json:"user_id"`
	ChatID  int64  `json:"chat_id"`
	Outcome string `json:"outcome"`
}

// Preview cuts text to a short single-line excerpt for logs and events.
func Preview(text string) string {
	r := []rune(text)
	if len(r) <= previewLength {
		return text
	}
	return string(r[:previewLength]) + "..."
}
