// Package feed owns the feed state machine: topic navigation, depth
// transitions, speculative prefetch planning, the concept cache, and
// position snapshots. Nothing in this package performs I/O; the UI
// layer turns the intents produced here into commands.
package feed

import (
	"strings"
	"time"
)

// Category classifies a topic for display accents.
type Category string

const (
	CategoryNews     Category = "news"
	CategoryTech     Category = "tech"
	CategoryScience  Category = "science"
	CategoryFinance  Category = "finance"
	CategoryCulture  Category = "culture"
	CategoryPolitics Category = "politics"
	CategoryHealth   Category = "health"
	CategorySports   Category = "sports"
	CategoryGeneral  Category = "general"
)

var categories = map[Category]bool{
	CategoryNews:     true,
	CategoryTech:     true,
	CategoryScience:  true,
	CategoryFinance:  true,
	CategoryCulture:  true,
	CategoryPolitics: true,
	CategoryHealth:   true,
	CategorySports:   true,
	CategoryGeneral:  true,
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c Category) bool {
	return categories[c]
}

// Span is a located character range within a topic's content.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Highlight is a phrase in a topic's content flagged as explorable.
// Span is nil until the phrase has been located in the content.
type Highlight struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
	Span *Span  `json:"span,omitempty"`
}

// Topic is one unit of content in the feed. Topics are immutable once
// received; only the collections holding them change.
type Topic struct {
	ID         string      `json:"id"`
	Title      string      `json:"title"`
	Summary    string      `json:"summary"`
	Content    string      `json:"content"`
	Source     string      `json:"source"`
	SourceURL  string      `json:"source_url,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
	Category   Category    `json:"category"`
	Highlights []Highlight `json:"highlights,omitempty"`
}

// ResolvedHighlights returns the topic's highlights with spans located
// in the content. Highlights whose text cannot be found are dropped.
func (t Topic) ResolvedHighlights() []Highlight {
	if len(t.Highlights) == 0 {
		return nil
	}
	out := make([]Highlight, 0, len(t.Highlights))
	for _, h := range t.Highlights {
		if h.Span != nil {
			out = append(out, h)
			continue
		}
		if h.Text == "" {
			continue
		}
		idx := strings.Index(t.Content, h.Text)
		if idx < 0 {
			continue
		}
		h.Span = &Span{Start: idx, End: idx + len(h.Text)}
		out = append(out, h)
	}
	return out
}

// NormalizeConcept produces the cache key for a concept: trimmed and
// lowercased, so "Quantum" and "quantum " share one entry.
func NormalizeConcept(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// titleKeyLen is how much of a lowercased title participates in the
// near-duplicate check during pagination.
const titleKeyLen = 30

// titleKey returns the truncated-title similarity key for dedup.
func titleKey(title string) string {
	k := strings.ToLower(strings.TrimSpace(title))
	if len(k) > titleKeyLen {
		k = k[:titleKeyLen]
	}
	return k
}
