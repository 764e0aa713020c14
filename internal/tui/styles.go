// Package tui implements the Bubble Tea history browser for calcam.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/calcam/internal/styles"
)

// Styles used for rendering the TUI.
var (
	// Selected item style (matches border color).
	selectedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue).
			Bold(true)

	// Normal item style (no color, uses terminal default).
	normalStyle = lipgloss.NewStyle()

	// Calorie total style.
	caloriesStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen)

	// Subtle text such as food item lists.
	subtleStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	// Marks entries that still carry their image this session.
	imageStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow)

	statusStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingLeft(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue)
)

// bannerStyle styles the ASCII art banner.
var bannerStyle = styles.BannerStyle.
	PaddingLeft(1).
	PaddingBottom(1)

// Modal styles.
var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorBlue).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorWhite)

	modalHelpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			MarginTop(1)

	modalButtonStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(lipgloss.Color("#3b4261")).
				Foreground(lipgloss.Color("#a9b1d6"))

	modalButtonSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(styles.ColorBlue).
					Foreground(lipgloss.Color("#1a1b26")).
					Bold(true)
)

// Icons and symbols.
const (
	iconDot   = "•" // Unicode bullet separator
	iconImage = "◉" // entry still has its photo
)
