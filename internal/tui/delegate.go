package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/calcam/internal/core/history"
	"github.com/hay-kot/calcam/internal/printer"
)

// EntryItem wraps a history entry for the list component.
type EntryItem struct {
	Entry history.Entry
}

// FilterValue returns the value used for filtering.
func (i EntryItem) FilterValue() string {
	return i.Entry.ItemNames()
}

// EntryDelegate handles rendering of history entries in the list.
type EntryDelegate struct {
	Styles EntryDelegateStyles
}

// EntryDelegateStyles defines the styles for the delegate.
type EntryDelegateStyles struct {
	Normal   lipgloss.Style
	Selected lipgloss.Style
	Calories lipgloss.Style
	Items    lipgloss.Style
	Image    lipgloss.Style
}

// DefaultEntryDelegateStyles returns the default styles.
func DefaultEntryDelegateStyles() EntryDelegateStyles {
	return EntryDelegateStyles{
		Normal:   normalStyle,
		Selected: selectedStyle,
		Calories: caloriesStyle,
		Items:    subtleStyle,
		Image:    imageStyle,
	}
}

// NewEntryDelegate creates a new entry delegate with default styles.
func NewEntryDelegate() EntryDelegate {
	return EntryDelegate{
		Styles: DefaultEntryDelegateStyles(),
	}
}

// Height returns the height of each item.
func (d EntryDelegate) Height() int {
	return 2
}

// Spacing returns the spacing between items.
func (d EntryDelegate) Spacing() int {
	return 1
}

// Update handles item updates.
func (d EntryDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render renders a single item.
func (d EntryDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entryItem, ok := item.(EntryItem)
	if !ok {
		return
	}

	e := entryItem.Entry

	// Title line: date  total [image]
	title := e.Date.Local().Format("Mon Jan 2 15:04")
	total := d.Styles.Calories.Render(printer.Kcal(e.TotalCalories))

	var image string
	if e.HasImage() {
		image = " " + d.Styles.Image.Render(iconImage)
	}

	var titleStyle lipgloss.Style
	if index == m.Index() {
		titleStyle = d.Styles.Selected
		title = "> " + title
	} else {
		titleStyle = d.Styles.Normal
		title = "  " + title
	}

	items := truncate(e.ItemNames(), m.Width()-4)

	_, _ = fmt.Fprintf(w, "%s %s %s%s\n", titleStyle.Render(title), subtleStyle.Render(iconDot), total, image)
	_, _ = fmt.Fprintf(w, "  %s", d.Styles.Items.Render(items))
}

// truncate shortens s to at most width display cells, ending in "...".
func truncate(s string, width int) string {
	if width <= 3 || lipgloss.Width(s) <= width {
		return s
	}

	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
