package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ericfisherdev/washdesk/internal/adapter/driven/api"
	"github.com/ericfisherdev/washdesk/internal/adapter/driving/tui"
	"github.com/ericfisherdev/washdesk/internal/application"
	"github.com/ericfisherdev/washdesk/internal/domain/model"
	"github.com/ericfisherdev/washdesk/internal/domain/port/driven"
)

// resource is one browsable backend collection.
type resource interface {
	Name() string
	Deletable() bool
	// List fetches one page and renders it as a table.
	List(ctx context.Context, a *app, q model.ListQuery) (string, error)
	// Delete removes one entity, emitting the usual notification.
	Delete(ctx context.Context, a *app, req model.DeleteRequest) error
	// Screen builds the interactive list screen. The returned func releases it.
	Screen(ctx context.Context, a *app) (tea.Model, func())
}

// collection binds a model type to its endpoints and table columns.
type collection[T any] struct {
	name    string
	title   string
	columns []tui.Column[T]
	id      func(T) int64
	list    func(*api.Backend) driven.ListFunc[T]
	remove  func(*api.Backend) driven.DeleteFunc // nil for read-only collections
}

func (c collection[T]) Name() string    { return c.name }
func (c collection[T]) Deletable() bool { return c.remove != nil }

func (c collection[T]) List(ctx context.Context, a *app, q model.ListQuery) (string, error) {
	page, err := c.list(a.backend)(ctx, q)
	if err != nil {
		return "", err
	}

	headers := make([]string, 0, len(c.columns))
	for _, col := range c.columns {
		headers = append(headers, col.Title)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for _, item := range page.Items {
		row := make([]string, 0, len(c.columns))
		for _, col := range c.columns {
			row = append(row, col.Value(item))
		}
		t.Row(row...)
	}

	meta := page.Meta
	summary := fmt.Sprintf("Page %d of %d, %d total", q.Page, meta.TotalPages, meta.Total)
	if len(page.Items) == 0 {
		return "No results\n" + summary + "\n", nil
	}
	return t.String() + "\n" + summary + "\n", nil
}

func (c collection[T]) Delete(ctx context.Context, a *app, req model.DeleteRequest) error {
	ctrl := c.controller(ctx, a)
	defer ctrl.Close()
	return ctrl.RequestDelete(ctx, req, nil)
}

func (c collection[T]) Screen(ctx context.Context, a *app) (tea.Model, func()) {
	ctrl := c.controller(ctx, a)
	m := tui.NewListModel(ctx, ctrl, tui.ListConfig[T]{
		Title:   c.title,
		Columns: c.columns,
		ID:      c.screenID(),
	})
	return m, ctrl.Close
}

func (c collection[T]) controller(ctx context.Context, a *app) *application.ListController[T] {
	var remove driven.DeleteFunc
	if c.remove != nil {
		remove = c.remove(a.backend)
	}
	return application.NewListController(ctx, c.name, c.list(a.backend), remove,
		a.cache, a.notifier, a.listConfig(), a.logger)
}

func (c collection[T]) screenID() func(T) int64 {
	if c.remove == nil {
		return nil
	}
	return c.id
}

// resources is the registry of collections reachable from the CLI.
var resources = map[string]resource{
	"customers": collection[model.Customer]{
		name:  "customers",
		title: "Customers",
		columns: []tui.Column[model.Customer]{
			{Title: "ID", Width: 6, Value: func(c model.Customer) string { return formatID(c.ID) }},
			{Title: "Name", Width: 24, Value: func(c model.Customer) string { return c.Name }},
			{Title: "Phone", Width: 16, Value: func(c model.Customer) string { return c.Phone }},
			{Title: "Email", Width: 26, Value: func(c model.Customer) string { return c.Email }},
			{Title: "Balance", Width: 12, Value: func(c model.Customer) string { return formatAmount(c.Balance) }},
		},
		id:     func(c model.Customer) int64 { return c.ID },
		list:   func(b *api.Backend) driven.ListFunc[model.Customer] { return b.Customers.List },
		remove: func(b *api.Backend) driven.DeleteFunc { return b.Customers.Delete },
	},
	"users": collection[model.User]{
		name:  "users",
		title: "Users",
		columns: []tui.Column[model.User]{
			{Title: "ID", Width: 6, Value: func(u model.User) string { return formatID(u.ID) }},
			{Title: "Name", Width: 24, Value: func(u model.User) string { return u.Name }},
			{Title: "Email", Width: 28, Value: func(u model.User) string { return u.Email }},
			{Title: "Role", Width: 12, Value: func(u model.User) string { return u.Role }},
		},
		id:     func(u model.User) int64 { return u.ID },
		list:   func(b *api.Backend) driven.ListFunc[model.User] { return b.Users.List },
		remove: func(b *api.Backend) driven.DeleteFunc { return b.Users.Delete },
	},
	"inventory": collection[model.InventoryItem]{
		name:  "inventory",
		title: "Inventory",
		columns: []tui.Column[model.InventoryItem]{
			{Title: "ID", Width: 6, Value: func(i model.InventoryItem) string { return formatID(i.ID) }},
			{Title: "Name", Width: 24, Value: func(i model.InventoryItem) string { return i.Name }},
			{Title: "SKU", Width: 14, Value: func(i model.InventoryItem) string { return i.SKU }},
			{Title: "Qty", Width: 8, Value: func(i model.InventoryItem) string { return strconv.Itoa(i.Quantity) + " " + i.Unit }},
			{Title: "Updated", Width: 12, Value: func(i model.InventoryItem) string { return formatDate(i.UpdatedAt) }},
		},
		id:     func(i model.InventoryItem) int64 { return i.ID },
		list:   func(b *api.Backend) driven.ListFunc[model.InventoryItem] { return b.Inventory.List },
		remove: func(b *api.Backend) driven.DeleteFunc { return b.Inventory.Delete },
	},
	"topups": collection[model.TopUp]{
		name:  "topups",
		title: "Top-ups",
		columns: []tui.Column[model.TopUp]{
			{Title: "ID", Width: 6, Value: func(t model.TopUp) string { return formatID(t.ID) }},
			{Title: "Customer", Width: 24, Value: func(t model.TopUp) string { return t.CustomerName }},
			{Title: "Amount", Width: 12, Value: func(t model.TopUp) string { return formatAmount(t.Amount) }},
			{Title: "Status", Width: 10, Value: func(t model.TopUp) string { return string(t.Status) }},
			{Title: "Created", Width: 12, Value: func(t model.TopUp) string { return formatDate(t.CreatedAt) }},
		},
		id:   func(t model.TopUp) int64 { return t.ID },
		list: func(b *api.Backend) driven.ListFunc[model.TopUp] { return b.TopUps.List },
	},
	"deposits": collection[model.Deposit]{
		name:  "deposits",
		title: "Deposits",
		columns: []tui.Column[model.Deposit]{
			{Title: "ID", Width: 6, Value: func(d model.Deposit) string { return formatID(d.ID) }},
			{Title: "Customer", Width: 24, Value: func(d model.Deposit) string { return d.CustomerName }},
			{Title: "Amount", Width: 12, Value: func(d model.Deposit) string { return formatAmount(d.Amount) }},
			{Title: "Note", Width: 24, Value: func(d model.Deposit) string { return d.Note }},
			{Title: "Created", Width: 12, Value: func(d model.Deposit) string { return formatDate(d.CreatedAt) }},
		},
		id:   func(d model.Deposit) int64 { return d.ID },
		list: func(b *api.Backend) driven.ListFunc[model.Deposit] { return b.Deposits.List },
	},
}

func lookupResource(name string) (resource, error) {
	r, ok := resources[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q (one of: %s)", name, strings.Join(resourceNames(), ", "))
	}
	return r, nil
}

func resourceNames() []string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// formatAmount renders an integer amount with thousands separators.
func formatAmount(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
