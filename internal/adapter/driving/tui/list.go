package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ericfisherdev/washdesk/internal/application"
	"github.com/ericfisherdev/washdesk/internal/domain/model"
)

const (
	toastTTL      = 4 * time.Second
	defaultWidth  = 100
	defaultHeight = 24
	// Lines taken by everything around the table.
	chromeHeight = 10
)

// DefaultPageSizes are the page sizes cycled with "s".
var DefaultPageSizes = []int{10, 25, 50, 100}

// Column is one table column of a list screen.
type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

// ListConfig describes a list screen.
type ListConfig[T any] struct {
	Title     string
	Columns   []Column[T]
	ID        func(T) int64 // nil for read-only collections
	PageSizes []int
}

type (
	changesMsg      struct{}
	syncMsg         struct{}
	deleteDoneMsg   struct{ err error }
	toastExpiredMsg struct{ seq int }
)

// ListModel is the bubbletea model of one list screen. All paging, search
// and delete state lives in the controller; the model only renders it and
// forwards key presses.
type ListModel[T any] struct {
	ctx    context.Context
	ctrl   *application.ListController[T]
	cfg    ListConfig[T]
	styles Styles

	table  table.Model
	search textinput.Model
	reason textinput.Model

	state         application.ListState[T]
	searching     bool
	confirming    bool
	confirmID     int64
	deleting      bool
	toast         *model.Notification
	toastSeq      int
	loginRequired bool
	width         int
	height        int
}

// NewListModel builds a list screen over ctrl. Background work started by the
// screen is bound to ctx.
func NewListModel[T any](ctx context.Context, ctrl *application.ListController[T], cfg ListConfig[T]) ListModel[T] {
	if len(cfg.PageSizes) == 0 {
		cfg.PageSizes = DefaultPageSizes
	}

	columns := make([]table.Column, 0, len(cfg.Columns))
	for _, c := range cfg.Columns {
		columns = append(columns, table.Column{Title: c.Title, Width: c.Width})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(defaultHeight-chromeHeight),
		table.WithWidth(defaultWidth),
	)

	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 100

	reason := textinput.New()
	reason.Placeholder = "Reason (optional)"
	reason.CharLimit = 200

	m := ListModel[T]{
		ctx:    ctx,
		ctrl:   ctrl,
		cfg:    cfg,
		styles: DefaultStyles(),
		table:  t,
		search: search,
		reason: reason,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.sync()
	return m
}

// Init loads the first page and starts listening for controller changes.
func (m ListModel[T]) Init() tea.Cmd {
	return tea.Batch(m.refresh(), m.waitForChange())
}

// Update handles messages.
func (m ListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-chromeHeight, 3))
		return m, nil

	case changesMsg:
		m.sync()
		return m, m.waitForChange()

	case syncMsg:
		m.sync()
		return m, nil

	case ToastMsg:
		n := msg.Notification
		m.toast = &n
		m.toastSeq++
		seq := m.toastSeq
		return m, tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case LoginRequiredMsg:
		m.loginRequired = true
		return m, tea.Quit

	case deleteDoneMsg:
		m.deleting = false
		// A failed delete keeps the confirmation open for another try.
		if msg.err == nil {
			m.closeConfirm()
		}
		m.sync()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m ListModel[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	var cmd tea.Cmd

	if m.confirming {
		switch key {
		case "esc":
			if !m.deleting {
				m.closeConfirm()
			}
			return m, nil
		case "enter":
			if m.deleting {
				return m, nil
			}
			m.deleting = true
			return m, m.deleteCmd()
		}
		m.reason, cmd = m.reason.Update(msg)
		return m, cmd
	}

	if m.searching {
		switch key {
		case "esc", "enter":
			m.searching = false
			m.search.Blur()
			return m, nil
		}
		before := m.search.Value()
		m.search, cmd = m.search.Update(msg)
		if after := m.search.Value(); after != before {
			m.ctrl.SetKeyword(after)
			m.sync()
		}
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "/":
		m.searching = true
		cmd = m.search.Focus()
		return m, cmd
	case "right", "l", "pgdown":
		if total := m.state.Data.Meta.TotalPages; total == 0 || m.state.Page < total {
			m.ctrl.SetPage(m.state.Page) // zero-based index of the next page
			m.sync()
		}
		return m, nil
	case "left", "h", "pgup":
		if m.state.Page > 1 {
			m.ctrl.SetPage(m.state.Page - 2)
			m.sync()
		}
		return m, nil
	case "s":
		m.ctrl.SetPerPage(m.nextPageSize())
		m.sync()
		return m, nil
	case "r":
		m.ctrl.Invalidate()
		m.sync()
		return m, nil
	case "d":
		if item, ok := m.selected(); ok && m.cfg.ID != nil {
			m.confirming = true
			m.confirmID = m.cfg.ID(item)
			cmd = m.reason.Focus()
			return m, cmd
		}
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the screen.
func (m ListModel[T]) View() string {
	var sb strings.Builder

	if m.toast != nil && m.toast.Position == model.PositionTopRight {
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Right, m.renderToast()))
		sb.WriteString("\n")
	}

	searchStyle := m.styles.SearchBox
	if m.searching {
		searchStyle = m.styles.SearchActive
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		m.styles.Title.Render(m.cfg.Title),
		"  ",
		searchStyle.Render(m.search.View()),
	))
	sb.WriteString("\n")

	switch {
	case m.state.IsError && len(m.state.Data.Items) == 0:
		sb.WriteString(m.styles.Error.Render("Could not load: " + displayError(m.state.Err)))
	case m.state.IsLoading && len(m.state.Data.Items) == 0:
		sb.WriteString(m.styles.Muted.Render("Loading..."))
	case len(m.state.Data.Items) == 0:
		sb.WriteString(m.styles.Muted.Render("No results"))
	default:
		sb.WriteString(m.table.View())
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render(m.pageSummary()))
	sb.WriteString("\n")

	if m.confirming {
		prompt := fmt.Sprintf("Delete #%d?  %s\nenter confirm  esc cancel", m.confirmID, m.reason.View())
		if m.deleting {
			prompt = fmt.Sprintf("Deleting #%d...", m.confirmID)
		}
		sb.WriteString(m.styles.Confirm.Render(prompt))
		sb.WriteString("\n")
	}

	if m.toast != nil && m.toast.Position != model.PositionTopRight {
		sb.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.renderToast()))
		sb.WriteString("\n")
	}

	sb.WriteString(m.styles.Muted.Render(m.help()))
	return sb.String()
}

// LoginRequired reports whether the screen closed because the session ended.
func (m ListModel[T]) LoginRequired() bool {
	return m.loginRequired
}

func (m *ListModel[T]) sync() {
	m.state = m.ctrl.State()

	rows := make([]table.Row, 0, len(m.state.Data.Items))
	for _, item := range m.state.Data.Items {
		row := make(table.Row, 0, len(m.cfg.Columns))
		for _, c := range m.cfg.Columns {
			row = append(row, c.Value(item))
		}
		rows = append(rows, row)
	}
	m.table.SetRows(rows)
	if len(rows) > 0 && m.table.Cursor() >= len(rows) {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m ListModel[T]) selected() (T, bool) {
	var zero T
	items := m.state.Data.Items
	i := m.table.Cursor()
	if i < 0 || i >= len(items) {
		return zero, false
	}
	return items[i], true
}

func (m *ListModel[T]) closeConfirm() {
	m.confirming = false
	m.confirmID = 0
	m.reason.Reset()
	m.reason.Blur()
}

func (m ListModel[T]) nextPageSize() int {
	for _, n := range m.cfg.PageSizes {
		if n > m.state.PerPage {
			return n
		}
	}
	return m.cfg.PageSizes[0]
}

func (m ListModel[T]) refresh() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		_ = ctrl.Refresh(ctx) // the error is part of the controller state
		return syncMsg{}
	}
}

func (m ListModel[T]) waitForChange() tea.Cmd {
	ctx, changes := m.ctx, m.ctrl.Changes()
	return func() tea.Msg {
		select {
		case <-changes:
			return changesMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m ListModel[T]) deleteCmd() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	req := model.DeleteRequest{ID: m.confirmID, Reason: strings.TrimSpace(m.reason.Value())}
	return func() tea.Msg {
		return deleteDoneMsg{err: ctrl.RequestDelete(ctx, req, nil)}
	}
}

func (m ListModel[T]) renderToast() string {
	style, ok := m.styles.Toast[m.toast.Level]
	if !ok {
		style = m.styles.Toast[model.NotificationInfo]
	}
	text := m.toast.Title
	if m.toast.Description != "" {
		text += ": " + m.toast.Description
	}
	return style.Render(text)
}

func (m ListModel[T]) pageSummary() string {
	meta := m.state.Data.Meta
	parts := []string{"Page " + strconv.Itoa(m.state.Page)}
	if meta.TotalPages > 0 {
		parts[0] += " of " + strconv.Itoa(meta.TotalPages)
	}
	parts = append(parts,
		strconv.Itoa(meta.Total)+" total",
		strconv.Itoa(m.state.PerPage)+" per page",
	)
	if m.state.Keyword != "" {
		parts = append(parts, fmt.Sprintf("matching %q", m.state.Keyword))
	}
	if m.state.IsLoading {
		parts = append(parts, "loading")
	}
	return strings.Join(parts, " | ")
}

func (m ListModel[T]) help() string {
	help := "[/] search  [</>] page  [s] page size  [r] refresh  [q] quit"
	if m.cfg.ID != nil {
		help = "[/] search  [</>] page  [s] page size  [d] delete  [r] refresh  [q] quit"
	}
	return help
}

func displayError(err error) string {
	var m application.ErrorMessager
	if errors.As(err, &m) && m.UserMessage() != "" {
		return m.UserMessage()
	}
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
