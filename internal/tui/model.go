package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/calcam/internal/core/history"
	"github.com/hay-kot/calcam/internal/styles"
)

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateConfirming
)

// bannerHeight is the banner plus its padding and the summary line.
const bannerHeight = 7

// HistoryStore is the subset of history.Store the browser needs.
type HistoryStore interface {
	Start(ctx context.Context)
	Loading() bool
	Entries() []history.Entry
	Clear(ctx context.Context)
	OnChange(l history.Listener) func()
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx      context.Context
	history  HistoryStore
	changes  chan []history.Entry
	list     list.Model
	keys     keyMap
	spinner  spinner.Model
	modal    Modal
	state    UIState
	loading  bool
	width    int
	height   int
	quitting bool

	unsubscribe func()
}

// entriesChangedMsg carries a history snapshot after a mutation or hydration.
type entriesChangedMsg struct {
	entries []history.Entry
}

// clearCompleteMsg is sent when a clear finishes.
type clearCompleteMsg struct{}

// New creates a new TUI model. It subscribes to hst immediately so no change
// between construction and Init is missed; call Close when the program exits.
func New(ctx context.Context, hst HistoryStore) Model {
	keys := defaultKeyMap()

	l := list.New([]list.Item{}, NewEntryDelegate(), 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(true)
	l.Styles.TitleBar = lipgloss.NewStyle()

	helpStyle := lipgloss.NewStyle().Foreground(styles.ColorGray)
	l.Help.Styles.ShortKey = helpStyle
	l.Help.Styles.ShortDesc = helpStyle
	l.Help.Styles.ShortSeparator = helpStyle
	l.Help.ShortSeparator = " " + iconDot + " "
	l.Styles.HelpStyle = lipgloss.NewStyle().PaddingLeft(1)
	l.AdditionalShortHelpKeys = keys.ShortHelp

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	// Buffered so a mutation never blocks on a busy UI; only the latest
	// snapshot matters.
	changes := make(chan []history.Entry, 1)
	unsubscribe := hst.OnChange(func(entries []history.Entry) {
		select {
		case <-changes:
		default:
		}
		changes <- entries
	})

	return Model{
		ctx:         ctx,
		history:     hst,
		changes:     changes,
		list:        l,
		keys:        keys,
		spinner:     s,
		state:       stateNormal,
		loading:     hst.Loading(),
		unsubscribe: unsubscribe,
	}
}

// Close removes the history subscription.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	m.history.Start(m.ctx)

	cmds := []tea.Cmd{waitForChange(m.changes)}
	if m.loading {
		cmds = append(cmds, m.spinner.Tick)
	} else {
		entries := m.history.Entries()
		cmds = append(cmds, func() tea.Msg { return entriesChangedMsg{entries: entries} })
	}
	return tea.Batch(cmds...)
}

// waitForChange returns a command that blocks until the next history snapshot.
func waitForChange(changes <-chan []history.Entry) tea.Cmd {
	return func() tea.Msg {
		return entriesChangedMsg{entries: <-changes}
	}
}

func (m Model) clearHistory() tea.Cmd {
	return func() tea.Msg {
		m.history.Clear(m.ctx)
		return clearCompleteMsg{}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, max(msg.Height-bannerHeight, 1))
		return m, nil

	case entriesChangedMsg:
		m.loading = false
		items := make([]list.Item, len(msg.entries))
		for i, e := range msg.entries {
			items[i] = EntryItem{Entry: e}
		}
		cmd := m.list.SetItems(items)
		return m, tea.Batch(cmd, waitForChange(m.changes))

	case clearCompleteMsg:
		m.state = stateNormal
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.state == stateConfirming {
			return m.handleModalKey(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Let the filter input own every key while filtering.
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Clear):
		if m.loading || len(m.list.Items()) == 0 {
			return m, nil
		}
		m.state = stateConfirming
		m.modal = NewModal("Clear history", "Remove every logged meal? This cannot be undone.")
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.modal.ToggleSelection()
		return m, nil

	case key.Matches(msg, m.keys.Cancel):
		m.state = stateNormal
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if !m.modal.ConfirmSelected() {
			m.state = stateNormal
			return m, nil
		}
		m.state = stateNormal
		return m, m.clearHistory()
	}

	return m, nil
}
