package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type authMode int

const (
	authSignIn authMode = iota
	authSignUp
)

const (
	authFieldEmail = iota
	authFieldPassword
	authFieldName
)

// AuthFormModel is the sign-in / sign-up screen.
type AuthFormModel struct {
	gw           Gateway
	keys         FormKeyMap
	mode         authMode
	focusedField int
	inputs       []textinput.Model
	submitting   bool
	message      string
}

// NewAuthFormModel creates the sign-in form.
func NewAuthFormModel(gw Gateway, keys FormKeyMap) *AuthFormModel {
	inputs := make([]textinput.Model, 3)

	inputs[authFieldEmail] = textinput.New()
	inputs[authFieldEmail].Placeholder = "you@example.com"
	inputs[authFieldEmail].CharLimit = 254
	inputs[authFieldEmail].Focus()

	inputs[authFieldPassword] = textinput.New()
	inputs[authFieldPassword].Placeholder = "Password"
	inputs[authFieldPassword].EchoMode = textinput.EchoPassword
	inputs[authFieldPassword].EchoCharacter = '•'
	inputs[authFieldPassword].CharLimit = 128

	inputs[authFieldName] = textinput.New()
	inputs[authFieldName].Placeholder = "Your name"
	inputs[authFieldName].CharLimit = 100

	return &AuthFormModel{gw: gw, keys: keys, inputs: inputs}
}

func (m *AuthFormModel) fieldCount() int {
	if m.mode == authSignUp {
		return 3
	}
	return 2
}

// Update handles input.
func (m *AuthFormModel) Update(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.SwitchMode):
		if m.mode == authSignIn {
			m.mode = authSignUp
		} else {
			m.mode = authSignIn
			if m.focusedField == authFieldName {
				m.focus(authFieldEmail)
			}
		}
		m.message = ""
		return nil
	case msg.String() == "tab" || msg.String() == "down":
		m.focus((m.focusedField + 1) % m.fieldCount())
		return nil
	case msg.String() == "shift+tab" || msg.String() == "up":
		m.focus((m.focusedField + m.fieldCount() - 1) % m.fieldCount())
		return nil
	case key.Matches(msg, m.keys.Save), msg.String() == "enter":
		if m.focusedField < m.fieldCount()-1 && !key.Matches(msg, m.keys.Save) {
			m.focus(m.focusedField + 1)
			return nil
		}
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focusedField], cmd = m.inputs[m.focusedField].Update(msg)
	return cmd
}

func (m *AuthFormModel) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	email := strings.TrimSpace(m.inputs[authFieldEmail].Value())
	password := m.inputs[authFieldPassword].Value()
	m.submitting = true
	m.message = ""
	if m.mode == authSignUp {
		return signUpCmd(m.gw, email, password, strings.TrimSpace(m.inputs[authFieldName].Value()))
	}
	return signInCmd(m.gw, email, password)
}

// Failed records a failed attempt. message is "" for unknown failures.
func (m *AuthFormModel) Failed(message string) {
	m.submitting = false
	m.message = message
	m.inputs[authFieldPassword].SetValue("")
}

// Reset clears the form after sign-out.
func (m *AuthFormModel) Reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.submitting = false
	m.message = ""
	m.focus(authFieldEmail)
}

func (m *AuthFormModel) focus(field int) {
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	m.focusedField = field
}

// View renders the form.
func (m *AuthFormModel) View(width int) string {
	title := "Sign in"
	switchHint := "ctrl+t: create an account"
	if m.mode == authSignUp {
		title = "Sign up"
		switchHint = "ctrl+t: sign in instead"
	}

	fields := []string{
		TitleStyle.Render("My Places · " + title),
		renderFormField("Email", m.inputs[authFieldEmail], m.focusedField == authFieldEmail),
		renderFormField("Password", m.inputs[authFieldPassword], m.focusedField == authFieldPassword),
	}
	if m.mode == authSignUp {
		fields = append(fields, renderFormField("Name", m.inputs[authFieldName], m.focusedField == authFieldName))
	}
	if m.submitting {
		fields = append(fields, MutedStyle.Render("Contacting server…"))
	}
	if m.message != "" {
		fields = append(fields, ErrorStyle.Render(m.message))
	}
	fields = append(fields, StatusBarStyle.Render("enter: continue · "+switchHint+" · ctrl+c: quit"))

	panelWidth := width - 4
	if panelWidth < 30 {
		panelWidth = 30
	}
	return PanelStyle.Width(panelWidth).Render(strings.Join(fields, "\n\n"))
}

func renderFormField(label string, input textinput.Model, focused bool) string {
	style := LabelStyle
	if focused {
		style = FocusedLabelStyle
	}
	return style.Render(label) + "\n" + input.View()
}
