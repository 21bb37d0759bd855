package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
	"github.com/ericfisherdev/washdesk/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.Notifier  = (*Surface)(nil)
	_ driven.Navigator = (*Surface)(nil)
)

// ToastMsg delivers a notification to the running program.
type ToastMsg struct {
	Notification model.Notification
}

// LoginRequiredMsg tells the running program the session is gone.
type LoginRequiredMsg struct{}

// Sender is the part of *tea.Program the surface needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Surface is the notification and navigation sink of the terminal console.
// It forwards to the attached program without ever blocking the caller:
// notifications are raised from request hooks that must not wait on the UI
// loop. Messages raised before a program is attached are queued.
type Surface struct {
	mu      sync.Mutex
	program Sender
	pending []tea.Msg
}

// NewSurface creates an unattached surface.
func NewSurface() *Surface {
	return &Surface{}
}

// Attach routes messages to p and flushes anything queued. Passing nil
// detaches, after which messages queue again.
func (s *Surface) Attach(p Sender) {
	s.mu.Lock()
	s.program = p
	pending := s.pending
	if p != nil {
		s.pending = nil
	}
	s.mu.Unlock()

	if p == nil {
		return
	}
	for _, msg := range pending {
		go p.Send(msg)
	}
}

// Notify implements driven.Notifier.
func (s *Surface) Notify(n model.Notification) {
	s.send(ToastMsg{Notification: n})
}

// ToLogin implements driven.Navigator.
func (s *Surface) ToLogin() {
	s.send(LoginRequiredMsg{})
}

func (s *Surface) send(msg tea.Msg) {
	s.mu.Lock()
	p := s.program
	if p == nil {
		s.pending = append(s.pending, msg)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	go p.Send(msg)
}
