package domain

// NotificationType is the severity a notification is displayed with.
type NotificationType string

const (
	NotificationDefault NotificationType = "default"
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is a transient message for the user. It has no identity and
// is never persisted.
type Notification struct {
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
}

// NewNotification falls back to GenericErrorMessage when message is empty.
func NewNotification(t NotificationType, message string) Notification {
	if message == "" {
		message = GenericErrorMessage
	}
	return Notification{Type: t, Message: message}
}

// ErrorNotification converts err into the notification shown for it.
func ErrorNotification(err error) Notification {
	return NewNotification(NotificationError, UserMessage(err))
}
