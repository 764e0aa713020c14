package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/calcam/internal/printer"
	"github.com/hay-kot/calcam/internal/styles"
)

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(bannerStyle.Render(strings.TrimPrefix(styles.Banner, "\n")))
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(statusStyle.Render(m.spinner.View() + " Loading history..."))
	case len(m.list.Items()) == 0:
		b.WriteString(statusStyle.Render("No meals logged yet. Run 'calcam estimate <photo>' to add one."))
		b.WriteString("\n\n")
		b.WriteString(statusStyle.Render("q quit"))
	default:
		b.WriteString(statusStyle.Render(m.summary()))
		b.WriteString("\n\n")
		b.WriteString(m.list.View())
	}

	view := b.String()
	if m.state == stateConfirming {
		return m.modal.Overlay(view, m.width, m.height)
	}
	if m.height > 0 {
		view = lipgloss.NewStyle().MaxHeight(m.height).Render(view)
	}
	return view
}

func (m Model) summary() string {
	var total float64
	items := m.list.Items()
	for _, it := range items {
		if e, ok := it.(EntryItem); ok {
			total += e.Entry.TotalCalories
		}
	}
	return pluralMeals(len(items)) + " " + iconDot + " " + printer.Kcal(total) + " logged"
}

func pluralMeals(n int) string {
	if n == 1 {
		return "1 meal"
	}
	return strconv.Itoa(n) + " meals"
}
