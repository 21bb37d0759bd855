package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
	"github.com/ericfisherdev/washdesk/internal/domain/port/driven"
)

// SessionExpiredID is the fixed notification identity of the session-expired
// toast, so that duplicates coalesce in the notification layer.
const SessionExpiredID = "session-expired"

// SessionTeardown clears the credential, tells the user the session expired
// and navigates to the login entry point when the backend rejects a request
// as unauthorized.
type SessionTeardown struct {
	mu        sync.RWMutex
	store     *SessionStore
	notifier  driven.Notifier
	navigator driven.Navigator
	logger    *slog.Logger
}

// NewSessionTeardown wires the teardown to its collaborators.
func NewSessionTeardown(store *SessionStore, notifier driven.Notifier, navigator driven.Navigator, logger *slog.Logger) *SessionTeardown {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionTeardown{
		store:     store,
		notifier:  notifier,
		navigator: navigator,
		logger:    logger,
	}
}

// Run tears the session down for a request that was sent under credential
// generation gen. Only the first failure of a generation has any effect; the
// rest of a burst of concurrent 401s are no-ops. It reports whether a
// teardown sequence ran.
func (t *SessionTeardown) Run(ctx context.Context, gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.store.ClearIf(ctx, gen) {
		return false
	}

	t.logger.Warn("session expired, credential cleared")

	if t.notifier != nil {
		t.notifier.Notify(model.Notification{
			ID:          SessionExpiredID,
			Level:       model.NotificationError,
			Title:       "Session expired",
			Description: "Your session has expired. Please sign in again.",
			Position:    model.PositionBottomCenter,
		})
	}
	if t.navigator != nil {
		t.navigator.ToLogin()
	}
	return true
}

// Wait blocks while a teardown sequence is in progress. Request hooks call it
// before reading the credential so they never see a half-finished teardown.
func (t *SessionTeardown) Wait() {
	t.mu.RLock()
	t.mu.RUnlock() //nolint:staticcheck // Empty critical section is the barrier.
}
