package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/calcam/internal/core/history"
)

// fakeHistory implements HistoryStore for testing.
type fakeHistory struct {
	mu        sync.Mutex
	entries   []history.Entry
	loading   bool
	started   bool
	cleared   int
	listeners map[int]history.Listener
	next      int
}

func newFakeHistory(entries ...history.Entry) *fakeHistory {
	return &fakeHistory{entries: entries, loading: true, listeners: map[int]history.Listener{}}
}

func (f *fakeHistory) Start(context.Context) {
	f.mu.Lock()
	f.started = true
	f.mu.Unlock()
}

func (f *fakeHistory) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

func (f *fakeHistory) Entries() []history.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]history.Entry(nil), f.entries...)
}

func (f *fakeHistory) Clear(context.Context) {
	f.mu.Lock()
	f.entries = nil
	f.cleared++
	f.mu.Unlock()
	f.emit()
}

func (f *fakeHistory) OnChange(l history.Listener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	f.listeners[id] = l
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.listeners, id)
	}
}

func (f *fakeHistory) hydrated() {
	f.mu.Lock()
	f.loading = false
	f.mu.Unlock()
	f.emit()
}

func (f *fakeHistory) emit() {
	entries := f.Entries()
	f.mu.Lock()
	ls := make([]history.Listener, 0, len(f.listeners))
	for _, l := range f.listeners {
		ls = append(ls, l)
	}
	f.mu.Unlock()
	for _, l := range ls {
		l(entries)
	}
}

func entry(name string, calories float64) history.Entry {
	return history.Entry{
		ID:            name,
		Date:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		UploadedImage: history.Placeholder,
		FoodItems:     []history.FoodItem{{Name: name, EstimatedCalories: calories}},
		TotalCalories: calories,
	}
}

// next runs cmd, which must produce a message quickly.
func next(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	require.NotNil(t, cmd)

	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		return msg
	case <-time.After(time.Second):
		t.Fatal("command did not complete")
		return nil
	}
}

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestModel_ShowsSpinnerUntilHydrated(t *testing.T) {
	hist := newFakeHistory(entry("Pizza", 500))
	m := New(context.Background(), hist)
	defer m.Close()
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 40})

	m.Init()
	assert.True(t, hist.started)
	assert.Contains(t, m.View(), "Loading history")

	hist.hydrated()
	msg := next(t, waitForChange(m.changes))

	m, _ = update(m, msg)
	assert.False(t, m.loading)
	require.Len(t, m.list.Items(), 1)
	assert.Contains(t, m.View(), "Pizza")
	assert.Contains(t, m.View(), "1 meal")
}

func TestModel_ClearWithConfirmation(t *testing.T) {
	hist := newFakeHistory(entry("Pizza", 500), entry("Salad", 150))
	m := New(context.Background(), hist)
	defer m.Close()
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 40})

	hist.hydrated()
	m, _ = update(m, next(t, waitForChange(m.changes)))
	require.Len(t, m.list.Items(), 2)

	m, _ = update(m, keyPress('c'))
	assert.Equal(t, stateConfirming, m.state)
	assert.Contains(t, m.View(), "Clear history")

	// Cancel is selected by default.
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, stateNormal, m.state)
	assert.Zero(t, hist.cleared)

	m, _ = update(m, keyPress('c'))
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyLeft})
	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	next(t, cmd)
	assert.Equal(t, 1, hist.cleared)

	m, _ = update(m, next(t, waitForChange(m.changes)))
	assert.Empty(t, m.list.Items())
	assert.Contains(t, m.View(), "No meals logged yet")
}

func TestModel_ClearIgnoredWhileEmpty(t *testing.T) {
	hist := newFakeHistory()
	m := New(context.Background(), hist)
	defer m.Close()
	m, _ = update(m, tea.WindowSizeMsg{Width: 80, Height: 40})

	hist.hydrated()
	m, _ = update(m, next(t, waitForChange(m.changes)))

	m, _ = update(m, keyPress('c'))
	assert.Equal(t, stateNormal, m.state)
}

func TestModel_Quit(t *testing.T) {
	m := New(context.Background(), newFakeHistory())
	defer m.Close()

	m, cmd := update(m, keyPress('q'))
	assert.True(t, m.quitting)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestModel_CloseUnsubscribes(t *testing.T) {
	hist := newFakeHistory()
	m := New(context.Background(), hist)
	require.Len(t, hist.listeners, 1)

	m.Close()
	assert.Empty(t, hist.listeners)
}
