package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/sgoodwin/plunge/internal/feed"
)

// RenderCard draws the single visible topic card for the current depth.
// Deep-dive levels that have not arrived yet show the spinner; a failed
// on-demand fetch shows its error inline instead of replacing the card.
func RenderCard(st *feed.State, highlightIdx int, spinnerView, depthErr string, width, height int) string {
	cur := st.Current()
	if cur == nil {
		return MutedStyle.Render("  No topics loaded.")
	}

	innerWidth := width - 8
	if innerWidth < 20 {
		innerWidth = 20
	}

	var lines []string

	badge := CategoryBadge(cur.Category).Render(strings.ToUpper(string(cur.Category)))
	title := TitleStyle.Render(runewidth.Truncate(cur.Title, innerWidth, "..."))
	lines = append(lines, badge, title, "")

	body := depthBody(st, cur)
	switch {
	case depthErr != "":
		lines = append(lines, ErrorStyle.Render(depthErr))
	case body == "":
		lines = append(lines, MutedStyle.Render(spinnerView+" loading "+st.Depth.String()+" view..."))
	default:
		lines = append(lines, BodyStyle.Width(innerWidth).Render(body))
	}

	if chips := renderConceptChips(cur, highlightIdx, innerWidth); chips != "" {
		lines = append(lines, "", chips)
	}

	source := cur.Source
	if age := formatAge(cur.Timestamp); age != "" {
		source += "  ·  " + age
	}
	if cur.SourceURL != "" {
		source += "  ·  " + cur.SourceURL
	}
	lines = append(lines, "", SourceStyle.Render(runewidth.Truncate(source, innerWidth, "...")))

	card := CardBorder.Width(innerWidth + 4).Render(strings.Join(lines, "\n"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

// depthBody picks the text for the current depth level. Summary always
// exists on the topic; deeper levels come from the lazy caches.
func depthBody(st *feed.State, cur *feed.Topic) string {
	switch st.Depth {
	case feed.DepthExpanded:
		return st.Expanded[cur.ID]
	case feed.DepthDetail:
		return st.Detail[cur.ID]
	default:
		return cur.Summary
	}
}

// renderConceptChips lists the topic's explorable concepts, marking the
// one under the tab cursor.
func renderConceptChips(cur *feed.Topic, highlightIdx int, width int) string {
	resolved := cur.ResolvedHighlights()
	if len(resolved) == 0 {
		return ""
	}

	parts := make([]string, 0, len(resolved)+1)
	parts = append(parts, MutedStyle.Render("explore:"))
	for i, h := range resolved {
		if i == highlightIdx {
			parts = append(parts, ConceptChipSelected.Render(" "+h.Text+" "))
		} else {
			parts = append(parts, ConceptChip.Render(h.Text))
		}
	}
	return lipgloss.NewStyle().Width(width).Render(strings.Join(parts, "  "))
}

// formatAge renders how old a topic is, coarsely.
func formatAge(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	age := time.Since(ts)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}

// RenderStatusBar draws position, depth, session mode, and key hints.
func RenderStatusBar(st *feed.State, loadingMore bool, width int) string {
	left := fmt.Sprintf("%d/%d  ·  %s  ·  %s", st.Index+1, len(st.Topics), st.Depth, st.Mode)
	if loadingMore {
		left += "  ·  loading more..."
	}

	hints := strings.Join([]string{
		StatusBarKey.Render("↑↓") + " topics",
		StatusBarKey.Render("←→") + " depth",
		StatusBarKey.Render("tab") + " concepts",
		StatusBarKey.Render("enter") + " explore",
		StatusBarKey.Render("q") + " quit",
	}, "  ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(hints) - 4
	if gap < 1 {
		return StatusBar.Width(width).Render(left)
	}
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", gap) + hints)
}
