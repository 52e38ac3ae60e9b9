package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the persistent application configuration
type Config struct {
	// AI provider settings
	Anthropic AnthropicConfig `json:"anthropic"`

	// Headline feeds used when no AI provider is configured
	Feeds []FeedConfig `json:"feeds"`

	// Feed behavior tuning
	Feed FeedTuning `json:"feed"`

	// Optional feature toggles
	Features Features `json:"features"`
}

// AnthropicConfig holds Anthropic API settings
type AnthropicConfig struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"api_key,omitempty"`
	Model   string `json:"model,omitempty"` // Specific model to use
}

// FeedConfig is one RSS/Atom feed
type FeedConfig struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

// FeedTuning controls pagination and prefetch behavior
type FeedTuning struct {
	BatchSize     int `json:"batch_size"`     // Topics requested per fetch
	PreloadCount  int `json:"preload_count"`  // Upcoming topics to prefetch on navigation
	LoadThreshold int `json:"load_threshold"` // Remaining topics that trigger loading more
}

// Features toggles optional UI surfaces
type Features struct {
	Pagination      bool `json:"pagination"`       // Load more topics near the end of the list
	QuestionOverlay bool `json:"question_overlay"` // Free-form question input with '?'
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Enabled: false,
			Model:   "claude-sonnet-4-5-20250929",
		},
		Feeds: []FeedConfig{
			{Name: "BBC News", URL: "https://feeds.bbci.co.uk/news/rss.xml", Category: "news"},
			{Name: "Hacker News", URL: "https://news.ycombinator.com/rss", Category: "tech"},
			{Name: "Science Daily", URL: "https://www.sciencedaily.com/rss/all.xml", Category: "science"},
			{Name: "BBC Business", URL: "https://feeds.bbci.co.uk/news/business/rss.xml", Category: "finance"},
		},
		Feed: FeedTuning{
			BatchSize:     10,
			PreloadCount:  2,
			LoadThreshold: 3,
		},
		Features: Features{
			Pagination:      true,
			QuestionOverlay: true,
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".plunge", "config.json")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	path := ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults and try to auto-populate from environment
			cfg := DefaultConfig()
			cfg.AutoPopulateFromEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), nil
	}
	cfg.applyDefaults()
	cfg.AutoPopulateFromEnv()

	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // Restrictive permissions for API keys
}

// AutoPopulateFromEnv fills in the API key from environment variables
func (c *Config) AutoPopulateFromEnv() {
	if c.Anthropic.APIKey != "" {
		return
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Anthropic.APIKey = key
		c.Anthropic.Enabled = true
		return
	}
	if key := os.Getenv("CLAUDE_API_KEY"); key != "" {
		c.Anthropic.APIKey = key
		c.Anthropic.Enabled = true
	}
}

// applyDefaults fills zero values in a hand-edited config file
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Anthropic.Model == "" {
		c.Anthropic.Model = d.Anthropic.Model
	}
	if len(c.Feeds) == 0 {
		c.Feeds = d.Feeds
	}
	if c.Feed.BatchSize <= 0 {
		c.Feed.BatchSize = d.Feed.BatchSize
	}
	if c.Feed.PreloadCount <= 0 {
		c.Feed.PreloadCount = d.Feed.PreloadCount
	}
	if c.Feed.LoadThreshold <= 0 {
		c.Feed.LoadThreshold = d.Feed.LoadThreshold
	}
}

// AIEnabled reports whether live AI generation is configured
func (c *Config) AIEnabled() bool {
	return c.Anthropic.Enabled && c.Anthropic.APIKey != ""
}
