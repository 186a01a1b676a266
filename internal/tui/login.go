package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobdesk/internal/view"
)

// LoginFunc signs in and stores the session.
type LoginFunc func(ctx context.Context, email, password string) error

type loginDoneMsg struct{ err error }

type loginModel struct {
	ctx      context.Context
	login    LoginFunc
	inputs   []textinput.Model
	focus    int
	busy     bool
	errMsg   string
	loggedIn bool
}

func newLoginModel(ctx context.Context, email string, login LoginFunc) loginModel {
	e := textinput.New()
	e.Placeholder = "you@example.com"
	e.CharLimit = 254
	e.Width = 40
	e.SetValue(email)

	p := textinput.New()
	p.Placeholder = "password"
	p.EchoMode = textinput.EchoPassword
	p.EchoCharacter = '•'
	p.Width = 40

	m := loginModel{ctx: ctx, login: login, inputs: []textinput.Model{e, p}}
	if email != "" {
		m.focus = 1
	}
	m.inputs[m.focus].Focus()
	return m
}

func (m loginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m loginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errMsg = view.UserMessage(msg.err, "Invalid email or password.")
			m.inputs[1].SetValue("")
			return m, m.setFocus(1)
		}
		m.loggedIn = true
		return m, tea.Quit

	case tea.KeyMsg:
		if m.busy {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down", "shift+tab", "up":
			return m, m.setFocus(1 - m.focus)
		case "enter":
			if m.focus == 0 {
				return m, m.setFocus(1)
			}
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *loginModel) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[i].Focus()
}

func (m loginModel) submit() (tea.Model, tea.Cmd) {
	email := strings.TrimSpace(m.inputs[0].Value())
	password := m.inputs[1].Value()
	if email == "" || password == "" {
		m.errMsg = "Enter your email and password."
		return m, nil
	}
	m.busy = true
	m.errMsg = ""
	ctx, login := m.ctx, m.login
	return m, func() tea.Msg {
		return loginDoneMsg{err: login(ctx, email, password)}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Log in to jobdesk") + "\n")

	labels := []string{"Email", "Password"}
	for i, in := range m.inputs {
		label := labelStyle.Render(labels[i])
		if i == m.focus {
			label = focusedLabelStyle.Render(labels[i])
		}
		b.WriteString("  " + label + " " + in.View() + "\n")
	}

	b.WriteByte('\n')
	switch {
	case m.busy:
		b.WriteString("  Signing in...\n")
	case m.errMsg != "":
		b.WriteString("  " + errorStyle.Render(m.errMsg) + "\n")
	}
	b.WriteString(hintStyle.Render("  tab switch field  enter submit  esc cancel") + "\n")
	return b.String()
}

// RunLogin shows the login screen. It reports whether the user signed in.
func RunLogin(ctx context.Context, email string, login LoginFunc) (bool, error) {
	p := tea.NewProgram(newLoginModel(ctx, email, login), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("run login screen: %w", err)
	}
	return final.(loginModel).loggedIn, nil
}
