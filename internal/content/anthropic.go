package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/sgoodwin/plunge/internal/feed"
	"github.com/sgoodwin/plunge/internal/logging"
)

const anthropicEndpoint = "https://api.anthropic.com/v1/messages"

// Anthropic generates feed content with the Anthropic Messages API.
type Anthropic struct {
	apiKey  string
	model   string
	client  *http.Client
	limiter *rate.Limiter
}

// NewAnthropic creates a provider. An empty model selects a default.
func NewAnthropic(apiKey, model string) *Anthropic {
	if model == "" {
		model = "claude-sonnet-4-5-20250929"
	}
	return &Anthropic{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		// Gentle pacing: prefetch fans out several requests per
		// navigation event.
		limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 4),
	}
}

// Available reports whether the provider is configured.
func (a *Anthropic) Available() bool {
	return a != nil && a.apiKey != ""
}

// Name identifies the provider in logs.
func (a *Anthropic) Name() string {
	return "anthropic"
}

// FetchTopics asks the model for a JSON batch of topics. Malformed
// output degrades to an empty batch with an error, which sends the
// chain to the next provider.
func (a *Anthropic) FetchTopics(ctx context.Context, count int, exclude []string) (TopicBatch, error) {
	system := "You produce short discovery-feed topics as strict JSON. " +
		"Respond with a JSON array only. Each element: id, title, summary " +
		"(2 sentences), content (2 paragraphs), source, sourceUrl, category " +
		"(one of news, tech, science, finance, culture, politics, health, sports, general), " +
		"and highlights: up to 3 objects with text copied verbatim from content " +
		"and startIndex/endIndex set to 0."

	user := fmt.Sprintf("Generate %d diverse, current topics.", count)
	if len(exclude) > 0 {
		user += fmt.Sprintf(" Avoid repeating these %d already-shown topics.", len(exclude))
	}

	raw, err := a.generate(ctx, system, user, 4096)
	if err != nil {
		return TopicBatch{}, err
	}

	topics, err := feed.ParseTopics(raw, time.Now())
	if err != nil {
		logging.Warn("anthropic topic batch unparseable", "error", err)
		return TopicBatch{}, err
	}
	for i := range topics {
		if topics[i].ID == "" {
			topics[i].ID = uuid.NewString()
		}
		if topics[i].Source == "" {
			topics[i].Source = "AI Research"
		}
	}

	return TopicBatch{Topics: topics, Mode: feed.ModeLive, HasMore: true}, nil
}

// FetchExpansion produces the next level of depth for a topic.
func (a *Anthropic) FetchExpansion(ctx context.Context, topic feed.Topic, base string) (string, error) {
	system := "You expand feed topics into deeper reading. Respond with plain prose, no preamble."
	user := fmt.Sprintf("Topic: %s\n\nCurrent text:\n%s\n\nWrite a deeper treatment: background, why it matters, and what to watch next.",
		topic.Title, base)
	return a.generate(ctx, system, user, 2048)
}

// FetchExplanation researches a concept in the context of its topic.
func (a *Anthropic) FetchExplanation(ctx context.Context, concept string, topic feed.Topic) (string, error) {
	system := "You explain a concept for a curious reader in 2-3 short paragraphs. Plain prose, no preamble."
	user := fmt.Sprintf("Explain %q.\n\nIt appeared in this context (topic %s):\n%s",
		concept, topic.ID, topic.Content)
	return a.generate(ctx, system, user, 1024)
}

// FetchAnswer answers a question about a topic.
func (a *Anthropic) FetchAnswer(ctx context.Context, question string, topic feed.Topic, selected string) (string, error) {
	system := "You answer questions about a feed topic concisely and directly."
	user := fmt.Sprintf("Question: %s\n\nTopic: %s\n%s", question, topic.Title, topic.Content)
	if selected != "" {
		user += fmt.Sprintf("\n\nThe reader selected this text: %q", selected)
	}
	return a.generate(ctx, system, user, 1024)
}

// generate performs one Messages API call and returns the joined text
// blocks of the response.
func (a *Anthropic) generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if !a.Available() {
		return "", fmt.Errorf("anthropic provider not configured")
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body := map[string]interface{}{
		"model":      a.model,
		"max_tokens": maxTokens,
		"system":     system,
		"messages": []map[string]string{
			{"role": "user", "content": user},
		},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicEndpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", a.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.Error("anthropic API error", "status", resp.StatusCode, "body", string(respBody))
		return "", fmt.Errorf("API error (status %d)", resp.StatusCode)
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content"`
		Model      string `json:"model"`
		StopReason string `json:"stop_reason"`
	}

	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if result.StopReason == "max_tokens" {
		logging.Warn("anthropic response truncated", "model", result.Model, "max_tokens", maxTokens)
	}

	var parts []string
	for _, block := range result.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}

	logging.Debug("anthropic response", "model", result.Model, "blocks", len(result.Content))
	return strings.Join(parts, "\n\n"), nil
}
