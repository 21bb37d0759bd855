package driven

import "github.com/ericfisherdev/washdesk/internal/domain/model"

// Notifier is the notification surface that renders toasts to the user.
// Implementations must not block the caller on user interaction.
type Notifier interface {
	Notify(n model.Notification)
}

// Navigator moves the presentation layer between top-level routes.
type Navigator interface {
	// ToLogin forces navigation to the unauthenticated entry point.
	ToLogin()
}
