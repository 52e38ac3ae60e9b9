package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sgoodwin/plunge/internal/feed"
)

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorText      = lipgloss.Color("255")
)

// categoryColors gives each topic category a badge color.
var categoryColors = map[feed.Category]lipgloss.Color{
	feed.CategoryNews:     lipgloss.Color("39"),  // Blue
	feed.CategoryTech:     lipgloss.Color("78"),  // Green
	feed.CategoryScience:  lipgloss.Color("141"), // Violet
	feed.CategoryFinance:  lipgloss.Color("214"), // Orange
	feed.CategoryCulture:  lipgloss.Color("212"), // Pink
	feed.CategoryPolitics: lipgloss.Color("203"), // Red
	feed.CategoryHealth:   lipgloss.Color("85"),  // Teal
	feed.CategorySports:   lipgloss.Color("220"), // Yellow
	feed.CategoryGeneral:  colorSecondary,
}

// CategoryBadge styles a category label in its category color.
func CategoryBadge(cat feed.Category) lipgloss.Style {
	color, ok := categoryColors[cat]
	if !ok {
		color = colorSecondary
	}
	return lipgloss.NewStyle().
		Foreground(color).
		Bold(true)
}

// CardBorder frames the single visible topic card.
var CardBorder = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

// TitleStyle for the topic title.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorText)

// BodyStyle for topic body text.
var BodyStyle = lipgloss.NewStyle().
	Foreground(colorText)

// SourceStyle for the source attribution line.
var SourceStyle = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ConceptChip for an unselected concept.
var ConceptChip = lipgloss.NewStyle().
	Foreground(colorPrimary).
	Underline(true)

// ConceptChipSelected for the concept under the tab cursor.
var ConceptChipSelected = lipgloss.NewStyle().
	Foreground(lipgloss.Color("0")).
	Background(colorHighlight).
	Bold(true)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(colorText).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)

// OverlayBorder frames the concept and question overlays.
var OverlayBorder = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(colorHighlight).
	Padding(1, 2)

// OverlayTitle for overlay headings.
var OverlayTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// MutedStyle for secondary hints.
var MutedStyle = lipgloss.NewStyle().
	Foreground(colorMuted)
