// Package content supplies topics, deep-dive expansions, concept
// explanations, and answers to the feed. Providers are chained so the
// app degrades from live LLM output through real headlines down to
// built-in demo content.
package content

import (
	"context"

	"github.com/sgoodwin/plunge/internal/feed"
)

// TopicBatch is one page of topics plus where it came from.
type TopicBatch struct {
	Topics  []feed.Topic
	Mode    feed.Mode
	HasMore bool
}

// Service is the remote content surface the feed controller consumes.
type Service interface {
	// FetchTopics returns a batch of up to count topics, skipping ids
	// the caller already holds.
	FetchTopics(ctx context.Context, count int, exclude []string) (TopicBatch, error)

	// FetchExpansion returns deep-dive text for a topic. base is the
	// deepest content already shown, so a second call digs further.
	FetchExpansion(ctx context.Context, topic feed.Topic, base string) (string, error)

	// FetchExplanation researches a selected concept in the context of
	// its owning topic.
	FetchExplanation(ctx context.Context, concept string, topic feed.Topic) (string, error)

	// FetchAnswer answers a free-form question about a topic,
	// optionally scoped to selected text.
	FetchAnswer(ctx context.Context, question string, topic feed.Topic, selected string) (string, error)
}
