package ui

import (
	"github.com/sgoodwin/plunge/internal/content"
	"github.com/sgoodwin/plunge/internal/feed"
)

// Messages for Bubble Tea

// TopicsLoaded is sent when the initial topic batch arrives.
type TopicsLoaded struct {
	Batch content.TopicBatch
	Err   error
}

// MoreTopicsLoaded is sent when a pagination batch arrives.
type MoreTopicsLoaded struct {
	Batch content.TopicBatch
	Err   error
}

// ExpansionLoaded is sent when deep-dive content for a topic arrives.
// Prefetch marks speculative requests, whose failures stay silent.
type ExpansionLoaded struct {
	TopicID  string
	Content  string
	Prefetch bool
	Err      error
}

// DetailLoaded is sent when detail-level content for a topic arrives.
type DetailLoaded struct {
	TopicID string
	Content string
	Err     error
}

// ConceptLoaded is sent when a concept explanation arrives.
type ConceptLoaded struct {
	Concept  string
	Content  string
	Prefetch bool
	Err      error
}

// AnswerLoaded is sent when a free-form question is answered.
type AnswerLoaded struct {
	Question string
	Content  string
	Err      error
}

// SnapshotLoaded is sent at startup with the persisted session, if any.
type SnapshotLoaded struct {
	Snapshot feed.Snapshot
	Found    bool
	Err      error
}

// SnapshotSaved is sent after a checkpoint write completes.
type SnapshotSaved struct {
	Err error
}

// animTick drives the card slide animation between spring updates.
type animTick struct{}
