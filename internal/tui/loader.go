package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled is returned by RunLoader when the user presses ctrl+c.
var ErrCancelled = errors.New("cancelled")

type loadDoneMsg[T any] struct {
	value T
	err   error
}

type loaderModel[T any] struct {
	ctx     context.Context
	label   string
	fetch   func(ctx context.Context) (T, error)
	spinner spinner.Model
	result  T
	err     error
	done    bool
}

func newLoaderModel[T any](ctx context.Context, label string, fetch func(ctx context.Context) (T, error)) loaderModel[T] {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel[T]{ctx: ctx, label: label, fetch: fetch, spinner: s}
}

func (m loaderModel[T]) Init() tea.Cmd {
	return tea.Batch(m.doFetch(), m.spinner.Tick)
}

func (m loaderModel[T]) doFetch() tea.Cmd {
	ctx, fetch := m.ctx, m.fetch
	return func() tea.Msg {
		v, err := fetch(ctx)
		return loadDoneMsg[T]{value: v, err: err}
	}
}

func (m loaderModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDoneMsg[T]:
		m.result = msg.value
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel[T]) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner while fetch runs. It renders inline (no alt screen).
func RunLoader[T any](ctx context.Context, label string, fetch func(ctx context.Context) (T, error)) (T, error) {
	p := tea.NewProgram(newLoaderModel(ctx, label, fetch), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		var zero T
		return zero, err
	}
	m := final.(loaderModel[T])
	return m.result, m.err
}
