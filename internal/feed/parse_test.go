package feed

import (
	"testing"
	"time"
)

func TestParseTopics(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{
			"bare array",
			`[{"id":"a","title":"Title A","summary":"s","content":"c","category":"tech"}]`,
			1, false,
		},
		{
			"json fence",
			"```json\n[{\"id\":\"a\",\"title\":\"Title A\",\"category\":\"science\"}]\n```",
			1, false,
		},
		{
			"plain fence",
			"```\n[{\"id\":\"a\",\"title\":\"Title A\"}]\n```",
			1, false,
		},
		{
			"surrounding prose",
			"Here are the topics:\n[{\"id\":\"a\",\"title\":\"Title A\"}]\nHope that helps!",
			1, false,
		},
		{
			"missing titles skipped",
			`[{"id":"a","title":""},{"id":"b","title":"Kept"}]`,
			1, false,
		},
		{
			"not json",
			"I could not generate topics today.",
			0, true,
		},
		{
			"object not array",
			`{"title":"nope"}`,
			0, true,
		},
		{
			"broken array",
			`[{"id":"a","title":"Title A"`,
			0, true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topics, err := ParseTopics(tt.raw, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if len(topics) != tt.want {
				t.Errorf("parsed %d topics, want %d", len(topics), tt.want)
			}
		})
	}
}

func TestParseTopicsCategoryFallback(t *testing.T) {
	topics, err := ParseTopics(`[{"id":"a","title":"T","category":"astrology"}]`, time.Now())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if topics[0].Category != CategoryGeneral {
		t.Errorf("category = %q, want general", topics[0].Category)
	}
}

func TestParseTopicsSentinelOffsets(t *testing.T) {
	raw := `[{"id":"a","title":"T","content":"alpha beta gamma","highlights":[
		{"text":"beta","startIndex":0,"endIndex":0},
		{"text":"alpha","startIndex":0,"endIndex":5}
	]}]`

	topics, err := ParseTopics(raw, time.Now())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	hs := topics[0].Highlights
	if hs[0].Span != nil {
		t.Errorf("sentinel (0,0) should yield absent span, got %+v", hs[0].Span)
	}
	if hs[1].Span == nil || hs[1].Span.Start != 0 || hs[1].Span.End != 5 {
		t.Errorf("explicit span = %+v, want {0 5}", hs[1].Span)
	}

	// The sentinel highlight resolves at render time.
	resolved := topics[0].ResolvedHighlights()
	if len(resolved) != 2 {
		t.Fatalf("resolved %d, want 2", len(resolved))
	}
	if resolved[0].Span.Start != 6 || resolved[0].Span.End != 10 {
		t.Errorf("resolved beta span = %+v, want {6 10}", resolved[0].Span)
	}
}
