package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginForm asks for email and password. The password is masked.
type LoginForm struct {
	inputs    []textinput.Model
	focus     int
	submitted bool
	cancelled bool
	styles    Styles
}

// NewLoginForm creates the form, prefilled with email when known.
func NewLoginForm(email string) LoginForm {
	emailInput := textinput.New()
	emailInput.Placeholder = "email"
	emailInput.CharLimit = 254
	emailInput.SetValue(email)

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.CharLimit = 128

	f := LoginForm{inputs: []textinput.Model{emailInput, password}, styles: DefaultStyles()}
	if email != "" {
		f.focus = 1
	}
	f.inputs[f.focus].Focus()
	return f
}

// Init implements tea.Model.
func (f LoginForm) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (f LoginForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			f.cancelled = true
			return f, tea.Quit
		case "tab", "down":
			cmd := f.moveFocus(1)
			return f, cmd
		case "shift+tab", "up":
			cmd := f.moveFocus(-1)
			return f, cmd
		case "enter":
			if f.focus < len(f.inputs)-1 {
				cmd := f.moveFocus(1)
				return f, cmd
			}
			if f.Email() != "" && f.Password() != "" {
				f.submitted = true
				return f, tea.Quit
			}
			return f, nil
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

// View implements tea.Model.
func (f LoginForm) View() string {
	var sb strings.Builder
	sb.WriteString(f.styles.Title.Render("Sign in"))
	sb.WriteString("\n\n")
	for _, in := range f.inputs {
		sb.WriteString(in.View())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(f.styles.Muted.Render("[tab] next field  [enter] submit  [esc] cancel"))
	return sb.String()
}

// Submitted reports whether the user confirmed the form.
func (f LoginForm) Submitted() bool {
	return f.submitted && !f.cancelled
}

// Email returns the entered email, trimmed.
func (f LoginForm) Email() string {
	return strings.TrimSpace(f.inputs[0].Value())
}

// Password returns the entered password as typed.
func (f LoginForm) Password() string {
	return f.inputs[1].Value()
}

func (f *LoginForm) moveFocus(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}
