package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobdesk/internal/view"
)

// Lines per item in the list view (title + subtitle + blank separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

// Outcome is what a detail action did to its item.
type Outcome[T any] struct {
	Item T
	// Status is shown under the detail view, e.g. "Saved".
	Status string
	// Redirect, when set, closes the screen and asks the caller to route
	// there (the login screen for signed-out users).
	Redirect string
}

// Action binds a key in the detail view to an operation on the item.
type Action[T any] struct {
	Key  string
	Help string
	Run  func(ctx context.Context, item T) (Outcome[T], error)
}

// List describes a browsable list of records.
type List[T any] struct {
	Title   string
	Empty   string
	Items   []T
	ID      func(T) string
	Row     func(T) (title, subtitle string)
	Detail  func(T) string
	Actions []Action[T]
	// Open is the ID of an item whose detail view is shown first.
	Open string
	// Reload, when set, is bound to r in the list view and replaces the
	// items with what it returns.
	Reload func(ctx context.Context) ([]T, error)
}

// Result tells the caller why the screen closed.
type Result struct {
	Redirect string
	Quit     bool
}

type actionDoneMsg[T any] struct {
	index   int
	outcome Outcome[T]
	err     error
}

type reloadDoneMsg[T any] struct {
	items []T
	err   error
}

type listModel[T any] struct {
	ctx    context.Context
	cfg    List[T]
	items  []T
	cursor int

	list   viewport.Model
	detail viewport.Model
	view   viewState
	width  int
	height int
	ready  bool

	busy   bool
	status string
	errMsg string

	result Result
}

func newListModel[T any](ctx context.Context, cfg List[T]) listModel[T] {
	if cfg.Empty == "" {
		cfg.Empty = "Nothing here yet"
	}
	return listModel[T]{ctx: ctx, cfg: cfg, items: append([]T(nil), cfg.Items...)}
}

func (m listModel[T]) Init() tea.Cmd {
	return nil
}

func (m listModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		first := !m.ready
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		if first && m.cfg.Open != "" {
			m.openByID(m.cfg.Open)
		}
		return m, nil

	case actionDoneMsg[T]:
		m.busy = false
		if msg.err != nil {
			m.status = ""
			m.errMsg = view.UserMessage(msg.err, "Something went wrong. Please try again.")
			m.detail.SetContent(m.renderDetail())
			return m, nil
		}
		if msg.outcome.Redirect != "" {
			m.result.Redirect = msg.outcome.Redirect
			return m, tea.Quit
		}
		m.errMsg = ""
		m.status = msg.outcome.Status
		if msg.index < len(m.items) {
			m.items[msg.index] = msg.outcome.Item
		}
		m.refresh()
		return m, nil

	case reloadDoneMsg[T]:
		m.busy = false
		if msg.err != nil {
			m.errMsg = view.UserMessage(msg.err, "Could not refresh. Please try again.")
			return m, nil
		}
		m.errMsg = ""
		m.items = msg.items
		m.cursor = clamp(m.cursor, 0, max(len(m.items)-1, 0))
		m.refresh()
		m.ensureCursorVisible()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m listModel[T]) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.result.Quit = true
		return m, tea.Quit
	case "up", "k":
		m.cursor = clamp(m.cursor-1, 0, max(len(m.items)-1, 0))
		m.refresh()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.cursor = clamp(m.cursor+1, 0, max(len(m.items)-1, 0))
		m.refresh()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		if len(m.items) > 0 {
			m.openDetail()
		}
		return m, nil
	case "r":
		if m.cfg.Reload == nil || m.busy {
			return m, nil
		}
		m.busy = true
		ctx, reload := m.ctx, m.cfg.Reload
		return m, func() tea.Msg {
			items, err := reload(ctx)
			return reloadDoneMsg[T]{items: items, err: err}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m listModel[T]) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.result.Quit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		m.status, m.errMsg = "", ""
		return m, nil
	}

	for _, a := range m.cfg.Actions {
		if a.Key != key {
			continue
		}
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.status, m.errMsg = "working...", ""
		m.detail.SetContent(m.renderDetail())
		return m, m.runAction(a, m.cursor)
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m listModel[T]) runAction(a Action[T], index int) tea.Cmd {
	ctx, item := m.ctx, m.items[index]
	return func() tea.Msg {
		out, err := a.Run(ctx, item)
		return actionDoneMsg[T]{index: index, outcome: out, err: err}
	}
}

func (m *listModel[T]) openByID(id string) {
	if m.cfg.ID == nil {
		return
	}
	for i, it := range m.items {
		if m.cfg.ID(it) == id {
			m.cursor = i
			m.refresh()
			m.ensureCursorVisible()
			m.openDetail()
			return
		}
	}
}

func (m *listModel[T]) openDetail() {
	m.view = viewDetail
	m.status, m.errMsg = "", ""
	m.detail = viewport.New(max(m.width-4, 20), max(m.height-5, 5))
	m.detail.SetContent(m.renderDetail())
}

func (m *listModel[T]) layout() {
	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	w := max(m.width-4, 20)
	h := max(m.height-4, 5)
	if !m.ready {
		m.list = viewport.New(w, h)
		m.detail = viewport.New(w, max(h-1, 5))
		m.ready = true
	} else {
		m.list.Width, m.list.Height = w, h
		m.detail.Width, m.detail.Height = w, max(h-1, 5)
	}
	m.refresh()
}

func (m *listModel[T]) refresh() {
	m.list.SetContent(m.renderRows())
	if m.view == viewDetail {
		m.detail.SetContent(m.renderDetail())
	}
}

func (m *listModel[T]) ensureCursorVisible() {
	top := m.cursor * itemHeight
	bottom := top + itemHeight - 1
	if top < m.list.YOffset {
		m.list.SetYOffset(top)
	} else if bottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(bottom - m.list.Height + 1)
	}
}

func (m listModel[T]) renderRows() string {
	if len(m.items) == 0 {
		return emptyStyle.Render(m.cfg.Empty)
	}

	var b strings.Builder
	for i, it := range m.items {
		title, subtitle := m.cfg.Row(it)
		titleSt, subSt, prefix := itemTitleStyle, itemSubtitleStyle, "  "
		if i == m.cursor {
			titleSt, subSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}
		b.WriteString(prefix + titleSt.Render(title) + "\n")
		b.WriteString(prefix + subSt.Render(subtitle) + "\n")
		if i < len(m.items)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m listModel[T]) renderDetail() string {
	if len(m.items) == 0 {
		return ""
	}
	return wordWrap(m.cfg.Detail(m.items[m.cursor]), max(m.width-8, 20))
}

func (m listModel[T]) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}

	header := headerStyle.Render(fmt.Sprintf("%s (%d)", m.cfg.Title, len(m.items)))
	pane := borderStyle.Width(m.list.Width).Render(m.list.View())
	hints := "↑/↓ move  enter open  q quit"
	if m.cfg.Reload != nil {
		hints = "↑/↓ move  enter open  r refresh  q quit"
	}
	bar := statusBarStyle.Width(m.width).Render(hints)
	if m.errMsg != "" {
		return header + "\n" + pane + "\n" + errorStyle.Render("⚠ "+m.errMsg) + "\n" + bar
	}
	return header + "\n" + pane + "\n" + bar
}

func (m listModel[T]) viewDetail() string {
	header := headerStyle.Render(m.cfg.Title)
	pane := borderStyle.Width(m.detail.Width).Render(m.detail.View())

	line := ""
	switch {
	case m.errMsg != "":
		line = errorStyle.Render("⚠ " + m.errMsg)
	case m.status != "":
		line = noticeStyle.Render(m.status)
	}

	hints := make([]string, 0, len(m.cfg.Actions)+3)
	for _, a := range m.cfg.Actions {
		hints = append(hints, a.Key+" "+a.Help)
	}
	hints = append(hints, "esc back", "↑/↓ scroll", "q quit")
	bar := statusBarStyle.Width(m.width).Render(strings.Join(hints, "  "))

	return header + "\n" + pane + "\n" + line + "\n" + bar
}

// RunList shows cfg full screen until the user quits or an action redirects.
func RunList[T any](ctx context.Context, cfg List[T]) (Result, error) {
	p := tea.NewProgram(newListModel(ctx, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("run %s screen: %w", strings.ToLower(cfg.Title), err)
	}
	return final.(listModel[T]).result, nil
}
