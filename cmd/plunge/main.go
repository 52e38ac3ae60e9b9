// Plunge - a depth-first discovery feed for the terminal
//
// One topic on screen at a time. Down/up move through topics, right
// digs deeper into the current one, and highlighted concepts open a
// research overlay. Content comes from an AI provider when configured,
// real headlines otherwise, and built-in demo topics as a last resort.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/sgoodwin/plunge/internal/config"
	"github.com/sgoodwin/plunge/internal/content"
	"github.com/sgoodwin/plunge/internal/feed"
	"github.com/sgoodwin/plunge/internal/logging"
	"github.com/sgoodwin/plunge/internal/store"
	"github.com/sgoodwin/plunge/internal/ui"
)

// requestTimeout bounds every async content request fired from the UI.
const requestTimeout = 90 * time.Second

func main() {
	// A local .env can carry the API key during development.
	_ = godotenv.Load()

	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	cfg.Save() // Persist keys picked up from the environment

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fatal("Failed to get home directory: %v", err)
	}
	dataDir := filepath.Join(homeDir, ".plunge")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		fatal("Failed to create data directory: %v", err)
	}

	st, err := store.Open(filepath.Join(dataDir, "plunge.db"))
	if err != nil {
		// Continue without persistence
		logging.Warn("store unavailable, session will not be saved", "error", err)
		st = nil
	} else {
		defer st.Close()
	}

	svc := buildService(cfg)

	app := ui.NewApp(buildCommands(svc, st), cfg.Features, cfg.Feed.BatchSize)
	app.State().PreloadCount = cfg.Feed.PreloadCount
	app.State().LoadThreshold = cfg.Feed.LoadThreshold

	logging.Info("plunge starting", "ai", cfg.AIEnabled(), "feeds", len(cfg.Feeds))

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logging.Error("application error", "error", err)
		fatal("Error: %v", err)
	}

	logging.Info("plunge exiting normally")
}

// buildService assembles the provider chain: AI when configured, then
// real headlines, then built-in demo content.
func buildService(cfg *config.Config) content.Service {
	demo := content.NewDemo()

	var sources []content.TopicSource
	var generators []content.Generator

	if cfg.AIEnabled() {
		llm := content.NewAnthropic(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
		sources = append(sources, llm)
		generators = append(generators, llm)
	}
	sources = append(sources, content.NewRSS(feedSources(cfg)), demo)
	generators = append(generators, demo)

	return content.NewChain(sources, generators)
}

func feedSources(cfg *config.Config) []content.FeedSource {
	if len(cfg.Feeds) == 0 {
		return content.DefaultFeedSources()
	}
	sources := make([]content.FeedSource, 0, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		cat := feed.Category(f.Category)
		if !feed.ValidCategory(cat) {
			cat = feed.CategoryGeneral
		}
		sources = append(sources, content.FeedSource{Name: f.Name, URL: f.URL, Category: cat})
	}
	return sources
}

// buildCommands wires the UI's injected commands to the content service
// and the store. Each command runs off the event loop and reports back
// as a message.
func buildCommands(svc content.Service, st *store.Store) ui.Commands {
	return ui.Commands{
		LoadSnapshot: func() tea.Cmd {
			return func() tea.Msg {
				if st == nil {
					return ui.SnapshotLoaded{}
				}
				raw, ok, err := st.Get(feed.SnapshotKey)
				if err != nil || !ok {
					return ui.SnapshotLoaded{Err: err}
				}
				sn, err := feed.DecodeSnapshot(raw)
				if err != nil {
					return ui.SnapshotLoaded{Err: err}
				}
				return ui.SnapshotLoaded{Snapshot: sn, Found: true}
			}
		},

		SaveSnapshot: func(sn feed.Snapshot) tea.Cmd {
			return func() tea.Msg {
				if st == nil {
					return ui.SnapshotSaved{}
				}
				raw, err := sn.Encode()
				if err == nil {
					err = st.Set(feed.SnapshotKey, raw)
				}
				return ui.SnapshotSaved{Err: err}
			}
		},

		LoadTopics: func(count int) tea.Cmd {
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				batch, err := svc.FetchTopics(ctx, count, nil)
				return ui.TopicsLoaded{Batch: batch, Err: err}
			}
		},

		LoadMoreTopics: func(count int, exclude []string) tea.Cmd {
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				batch, err := svc.FetchTopics(ctx, count, exclude)
				return ui.MoreTopicsLoaded{Batch: batch, Err: err}
			}
		},

		LoadExpansion: func(topic feed.Topic, base string, prefetch bool) tea.Cmd {
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				text, err := svc.FetchExpansion(ctx, topic, base)
				return ui.ExpansionLoaded{TopicID: topic.ID, Content: text, Prefetch: prefetch, Err: err}
			}
		},

		LoadDetail: func(topic feed.Topic, base string) tea.Cmd {
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				text, err := svc.FetchExpansion(ctx, topic, base)
				return ui.DetailLoaded{TopicID: topic.ID, Content: text, Err: err}
			}
		},

		LoadExplanation: func(topic feed.Topic, concept string, prefetch bool) tea.Cmd {
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				text, err := svc.FetchExplanation(ctx, concept, topic)
				return ui.ConceptLoaded{Concept: concept, Content: text, Prefetch: prefetch, Err: err}
			}
		},

		LoadAnswer: func(topic feed.Topic, question, selected string) tea.Cmd {
			return func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
				defer cancel()
				text, err := svc.FetchAnswer(ctx, question, topic, selected)
				return ui.AnswerLoaded{Question: question, Content: text, Err: err}
			}
		},
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
