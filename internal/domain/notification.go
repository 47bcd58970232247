package domain

import "time"

type NotificationType string

const (
	NotificationForwardFailure NotificationType = "forward_failure"
	NotificationStartup        NotificationType = "startup"
	NotificationShutdown       NotificationType = "shutdown"
	NotificationGeneric        NotificationType = "generic"
)

type Notification struct {
	ID        int64
	Type      NotificationType
	Platform  Platform
	SourceID  int64
	MessageID int64
	Message   string
	Metadata  map[string]string
	CreatedAt time.Time
}
