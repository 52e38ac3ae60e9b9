package content

import (
	"context"
	"fmt"

	"github.com/sgoodwin/plunge/internal/feed"
	"github.com/sgoodwin/plunge/internal/logging"
)

// TopicSource is a provider that can produce topic batches.
type TopicSource interface {
	Name() string
	FetchTopics(ctx context.Context, count int, exclude []string) (TopicBatch, error)
}

// Generator is a provider that can produce expansions, explanations,
// and answers.
type Generator interface {
	Name() string
	FetchExpansion(ctx context.Context, topic feed.Topic, base string) (string, error)
	FetchExplanation(ctx context.Context, concept string, topic feed.Topic) (string, error)
	FetchAnswer(ctx context.Context, question string, topic feed.Topic, selected string) (string, error)
}

// Chain tries topic sources in order until one returns a batch, and
// routes generation calls to the first generator. It implements
// Service for the rest of the app.
type Chain struct {
	sources    []TopicSource
	generators []Generator
}

// NewChain builds a chain from ordered sources and generators. The
// caller puts the preferred provider first and the demo provider last.
func NewChain(sources []TopicSource, generators []Generator) *Chain {
	return &Chain{sources: sources, generators: generators}
}

// FetchTopics walks the source chain. The batch keeps the Mode of the
// provider that produced it, so a headline fallback is still a live
// session while the demo fallback marks the whole session as demo.
func (c *Chain) FetchTopics(ctx context.Context, count int, exclude []string) (TopicBatch, error) {
	var lastErr error
	for _, src := range c.sources {
		batch, err := src.FetchTopics(ctx, count, exclude)
		if err != nil {
			logging.Warn("topic source failed, trying next", "source", src.Name(), "error", err)
			lastErr = err
			continue
		}
		if len(batch.Topics) == 0 && batch.HasMore {
			logging.Warn("topic source returned empty batch, trying next", "source", src.Name())
			continue
		}
		logging.Info("topic batch served", "source", src.Name(), "count", len(batch.Topics), "mode", batch.Mode)
		return batch, nil
	}
	if lastErr != nil {
		return TopicBatch{}, lastErr
	}
	return TopicBatch{}, fmt.Errorf("no topic source produced a batch")
}

// FetchExpansion routes to the first generator. A failure propagates
// rather than falling through: mixing a live deep dive with canned
// fallback text mid-topic reads worse than an error.
func (c *Chain) FetchExpansion(ctx context.Context, topic feed.Topic, base string) (string, error) {
	gen, err := c.generator()
	if err != nil {
		return "", err
	}
	return gen.FetchExpansion(ctx, topic, base)
}

// FetchExplanation routes to the first generator.
func (c *Chain) FetchExplanation(ctx context.Context, concept string, topic feed.Topic) (string, error) {
	gen, err := c.generator()
	if err != nil {
		return "", err
	}
	return gen.FetchExplanation(ctx, concept, topic)
}

// FetchAnswer routes to the first generator.
func (c *Chain) FetchAnswer(ctx context.Context, question string, topic feed.Topic, selected string) (string, error) {
	gen, err := c.generator()
	if err != nil {
		return "", err
	}
	return gen.FetchAnswer(ctx, question, topic, selected)
}

func (c *Chain) generator() (Generator, error) {
	if len(c.generators) == 0 {
		return nil, fmt.Errorf("no generator configured")
	}
	return c.generators[0], nil
}
