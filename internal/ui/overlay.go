package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// RenderConceptOverlay draws the research overlay for a selected
// concept on top of the feed.
func RenderConceptOverlay(concept, content string, loading bool, spinnerView string, width, height int) string {
	innerWidth := width * 3 / 4
	if innerWidth < 30 {
		innerWidth = 30
	}

	var lines []string
	lines = append(lines, OverlayTitle.Render(concept), "")

	if loading {
		lines = append(lines, MutedStyle.Render(spinnerView+" researching..."))
	} else {
		lines = append(lines, BodyStyle.Width(innerWidth).Render(content))
	}

	lines = append(lines, "", MutedStyle.Render("esc/← close"))

	box := OverlayBorder.Width(innerWidth + 4).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// RenderQuestionOverlay draws the free-form question input and, once
// available, the answer beneath it.
func RenderQuestionOverlay(input textinput.Model, answer string, loading bool, spinnerView string, width, height int) string {
	innerWidth := width * 3 / 4
	if innerWidth < 30 {
		innerWidth = 30
	}

	var lines []string
	lines = append(lines, OverlayTitle.Render("Ask about this topic"), "")
	lines = append(lines, input.View())

	switch {
	case loading:
		lines = append(lines, "", MutedStyle.Render(spinnerView+" thinking..."))
	case answer != "":
		lines = append(lines, "", BodyStyle.Width(innerWidth).Render(answer))
	}

	lines = append(lines, "", MutedStyle.Render("enter ask  ·  esc close"))

	box := OverlayBorder.Width(innerWidth + 4).Render(strings.Join(lines, "\n"))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
