package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// keyMap holds the history browser key bindings.
type keyMap struct {
	Clear key.Binding
	Quit  key.Binding

	// Modal
	Toggle  key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear history"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("left", "right", "h", "l", "tab"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "n"),
		),
	}
}

// ShortHelp returns the bindings shown in the list help line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Clear}
}
