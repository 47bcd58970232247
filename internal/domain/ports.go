package domain

import "context"

type OutgoingMessagePort interface {
	SendMessage(ctx context.Context, platform Platform, chatID int64, text string) error
}

// MessageForwarder re-posts an existing message into another chat.
type MessageForwarder interface {
	ForwardMessage(ctx context.Context, platform Platform, toChatID, fromChatID, messageID int64) error
}

// ChannelResolver turns an operator supplied name (@name, t.me link or id)
// into the numeric channel id used in the configuration.
type ChannelResolver interface {
	ResolveChannel(ctx context.Context, platform Platform, name string) (int64, error)
}

// Transport is everything the core needs from a messaging network session.
type Transport interface {
	OutgoingMessagePort
	MessageForwarder
	ChannelResolver
}

// ConfigRepository persists the filter configuration. Load returns nil, nil
// when nothing has been stored yet.
type ConfigRepository interface {
	Load(ctx context.Context) (*Configuration, error)
	Save(ctx context.Context, cfg *Configuration) error
}

type NotificationRepository interface {
	SaveNotification(ctx context.Context, notification *Notification) (*Notification, error)
	ListNotifications(ctx context.Context, limit int) ([]*Notification, error)
}
