package domain

type Platform string

const (
	PlatformTelegram Platform = "telegram"
)

// Message is an inbound event as delivered by a transport adapter.
type Message struct {
	Platform Platform

	// ID is the network message id. Telegram numbers messages per chat.
	ID int64

	ChatID       int64
	ChatTitle    string
	ChatUsername string

	UserID   int64
	Username string
	Text     string

	IsPrivate     bool
	IsChannelPost bool
}

// Source returns a human label for the chat the message came from.
func (m Message) Source() string {
	switch {
	case m.ChatUsername != "":
		return "@" + m.ChatUsername
	case m.ChatTitle != "":
		return m.ChatTitle
	default:
		return ""
	}
}
