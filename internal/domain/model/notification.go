package model

// NotificationLevel is the severity of a user-visible notification.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
	NotificationInfo    NotificationLevel = "info"
)

// NotificationPosition is where the notification surface should render a toast.
type NotificationPosition string

const (
	PositionTopRight     NotificationPosition = "top-right"
	PositionBottomCenter NotificationPosition = "bottom-center"
)

// Notification is a toast sent to the notification surface. Notifications
// sharing a non-empty ID coalesce in the surface.
type Notification struct {
	ID          string
	Level       NotificationLevel
	Title       string
	Description string
	Position    NotificationPosition
}
