package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// pagerModel scrolls a block of pre-rendered text.
type pagerModel struct {
	title   string
	content string
	vp      viewport.Model
	width   int
	ready   bool
}

func (m pagerModel) Init() tea.Cmd {
	return nil
}

func (m pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w, h := max(msg.Width-4, 20), max(msg.Height-4, 5)
		if !m.ready {
			m.vp = viewport.New(w, h)
			m.ready = true
		} else {
			m.vp.Width, m.vp.Height = w, h
		}
		m.vp.SetContent(m.content)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m pagerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	header := headerStyle.Render(m.title)
	pane := borderStyle.Width(m.vp.Width).Render(m.vp.View())
	bar := statusBarStyle.Width(m.width).Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll  q quit", m.vp.ScrollPercent()*100))
	return header + "\n" + pane + "\n" + bar
}

// RunPager shows content full screen, e.g. a rendered dashboard.
func RunPager(ctx context.Context, title, content string) error {
	p := tea.NewProgram(pagerModel{title: title, content: content}, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run pager: %w", err)
	}
	return nil
}
