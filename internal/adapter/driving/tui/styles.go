// Package tui is the interactive terminal console: one list screen per
// backend collection plus the toast line that surfaces notifications.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

// Palette.
var (
	colorPrimary     = lipgloss.Color("#2196F3")
	colorMuted       = lipgloss.Color("#6B7280")
	colorBorder      = lipgloss.Color("#374151")
	colorSuccess     = lipgloss.Color("#8BC34A")
	colorDestructive = lipgloss.Color("#E53935")
	colorInfo        = lipgloss.Color("#4DB6AC")
)

// Styles holds the lipgloss styles of the console.
type Styles struct {
	Title        lipgloss.Style
	Muted        lipgloss.Style
	Error        lipgloss.Style
	SearchBox    lipgloss.Style
	SearchActive lipgloss.Style
	Confirm      lipgloss.Style
	Toast        map[model.NotificationLevel]lipgloss.Style
}

// DefaultStyles returns the console styles.
func DefaultStyles() Styles {
	toast := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	search := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	return Styles{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1),
		Muted:        lipgloss.NewStyle().Foreground(colorMuted),
		Error:        lipgloss.NewStyle().Foreground(colorDestructive),
		SearchBox:    search,
		SearchActive: search.BorderForeground(colorPrimary),
		Confirm: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDestructive).
			Padding(0, 1),
		Toast: map[model.NotificationLevel]lipgloss.Style{
			model.NotificationSuccess: toast.Foreground(colorSuccess),
			model.NotificationError:   toast.Foreground(colorDestructive),
			model.NotificationInfo:    toast.Foreground(colorInfo),
		},
	}
}
