// Package notify implements the Notifier port for non-interactive surfaces
// and the decorators shared by every surface.
package notify

import (
	"context"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/atom"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
	"github.com/ericfisherdev/washdesk/internal/domain/port/driven"
)

var (
	_ driven.Notifier = (*LogNotifier)(nil)
	_ driven.Notifier = (*Sanitizing)(nil)
	_ driven.Notifier = (*Coalescing)(nil)
	_ driven.Notifier = (*Recorder)(nil)
)

// LogNotifier writes notifications to a structured logger. Errors are logged
// at error level, everything else at info.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements driven.Notifier.
func (n *LogNotifier) Notify(note model.Notification) {
	level := slog.LevelInfo
	if note.Level == model.NotificationError {
		level = slog.LevelError
	}
	n.logger.Log(context.Background(), level, note.Title,
		"description", note.Description,
		"id", note.ID,
		"position", string(note.Position),
	)
}

// tagOpen matches the start of anything an HTML parser would read as a tag.
// Only names in the HTML atom table are treated as markup.
var tagOpen = regexp.MustCompile(`</?([A-Za-z][A-Za-z0-9-]*)`)

// Sanitizing strips HTML elements from notification text before passing it
// on. Descriptions often echo backend messages verbatim, so bracketed text
// that is not an HTML element, such as "<A-12>", is kept as written.
type Sanitizing struct {
	next   driven.Notifier
	policy *bluemonday.Policy
}

// NewSanitizing wraps next.
func NewSanitizing(next driven.Notifier) *Sanitizing {
	return &Sanitizing{next: next, policy: bluemonday.StrictPolicy()}
}

// Notify implements driven.Notifier.
func (s *Sanitizing) Notify(note model.Notification) {
	note.Title = s.clean(note.Title)
	note.Description = s.clean(note.Description)
	s.next.Notify(note)
}

func (s *Sanitizing) clean(text string) string {
	text = tagOpen.ReplaceAllStringFunc(text, func(tag string) string {
		name := strings.TrimLeft(tag, "</")
		if atom.Lookup([]byte(strings.ToLower(name))) != 0 {
			return tag
		}
		return "&lt;" + strings.TrimPrefix(tag, "<")
	})
	// StrictPolicy escapes what it keeps; the surfaces render plain text.
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}

// Coalescing drops a notification whose ID was already shown within the
// window. Notifications without an ID always pass.
type Coalescing struct {
	next   driven.Notifier
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

// NewCoalescing wraps next.
func NewCoalescing(next driven.Notifier, window time.Duration) *Coalescing {
	return &Coalescing{
		next:   next,
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
}

// Notify implements driven.Notifier.
func (c *Coalescing) Notify(note model.Notification) {
	if note.ID != "" {
		now := c.now()
		c.mu.Lock()
		last, ok := c.seen[note.ID]
		if ok && now.Sub(last) < c.window {
			c.mu.Unlock()
			return
		}
		c.seen[note.ID] = now
		c.mu.Unlock()
	}
	c.next.Notify(note)
}

// Recorder keeps every notification in memory. The CLI uses it to print
// toasts after a command finishes; tests use it to assert on them.
type Recorder struct {
	mu    sync.Mutex
	notes []model.Notification
}

// Notify implements driven.Notifier.
func (r *Recorder) Notify(note model.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note)
}

// Notifications returns a copy of everything recorded so far.
func (r *Recorder) Notifications() []model.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Notification, len(r.notes))
	copy(out, r.notes)
	return out
}

// Fanout delivers each notification to every notifier in order.
type Fanout []driven.Notifier

// Notify implements driven.Notifier.
func (f Fanout) Notify(note model.Notification) {
	for _, n := range f {
		n.Notify(note)
	}
}
