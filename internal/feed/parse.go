package feed

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// wireTopic is the shape LLM responses use. Offsets keep the legacy
// (0,0) sentinel meaning "not yet located"; ParseTopics converts that
// into an absent Span.
type wireTopic struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Content    string `json:"content"`
	Source     string `json:"source"`
	SourceURL  string `json:"sourceUrl"`
	Category   string `json:"category"`
	Highlights []struct {
		ID         string `json:"id"`
		Text       string `json:"text"`
		StartIndex int    `json:"startIndex"`
		EndIndex   int    `json:"endIndex"`
	} `json:"highlights"`
}

// ParseTopics parses a JSON topic batch out of raw model output, which
// may be wrapped in markdown fences or surrounded by prose. Malformed
// payloads degrade to an empty batch with an error value; nothing here
// panics or propagates past the boundary.
func ParseTopics(raw string, now time.Time) ([]Topic, error) {
	payload := extractJSONArray(stripFences(raw))
	if payload == "" {
		return nil, fmt.Errorf("no JSON array in response")
	}

	var wire []wireTopic
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return nil, fmt.Errorf("parse topic batch: %w", err)
	}

	topics := make([]Topic, 0, len(wire))
	for _, w := range wire {
		if strings.TrimSpace(w.Title) == "" {
			continue
		}
		cat := Category(strings.ToLower(strings.TrimSpace(w.Category)))
		if !ValidCategory(cat) {
			cat = CategoryGeneral
		}
		t := Topic{
			ID:        w.ID,
			Title:     w.Title,
			Summary:   w.Summary,
			Content:   w.Content,
			Source:    w.Source,
			SourceURL: w.SourceURL,
			Timestamp: now,
			Category:  cat,
		}
		for _, h := range w.Highlights {
			hl := Highlight{ID: h.ID, Text: h.Text}
			if h.StartIndex != 0 || h.EndIndex != 0 {
				hl.Span = &Span{Start: h.StartIndex, End: h.EndIndex}
			}
			t.Highlights = append(t.Highlights, hl)
		}
		topics = append(topics, t)
	}

	return topics, nil
}

// stripFences removes a surrounding ```json ... ``` (or plain ```)
// fence if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// extractJSONArray returns the outermost [...] slice of s, or "" when
// no array is present.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}
