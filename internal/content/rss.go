package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/sgoodwin/plunge/internal/feed"
	"github.com/sgoodwin/plunge/internal/logging"
)

// maxConcurrentFeeds limits parallel feed fetches.
const maxConcurrentFeeds = 4

// feedTimeout bounds each individual feed fetch.
const feedTimeout = 15 * time.Second

// FeedSource is one RSS/Atom feed the headline provider draws from.
type FeedSource struct {
	Name     string
	URL      string
	Category feed.Category
}

// DefaultFeedSources covers the feed's category spread with a few
// widely available feeds.
func DefaultFeedSources() []FeedSource {
	return []FeedSource{
		{Name: "BBC News", URL: "https://feeds.bbci.co.uk/news/rss.xml", Category: feed.CategoryNews},
		{Name: "Hacker News", URL: "https://news.ycombinator.com/rss", Category: feed.CategoryTech},
		{Name: "Science Daily", URL: "https://www.sciencedaily.com/rss/all.xml", Category: feed.CategoryScience},
		{Name: "BBC Business", URL: "https://feeds.bbci.co.uk/news/business/rss.xml", Category: feed.CategoryFinance},
	}
}

// RSS builds live topics out of real headlines. It cannot generate
// expansions or explanations; the chain routes those elsewhere.
type RSS struct {
	sources []FeedSource
	client  *http.Client
}

// NewRSS creates a headline-backed topic provider.
func NewRSS(sources []FeedSource) *RSS {
	return &RSS{
		sources: sources,
		client: &http.Client{
			Timeout: feedTimeout,
		},
	}
}

// Name identifies the provider in logs.
func (r *RSS) Name() string {
	return "rss"
}

// FetchTopics pulls every configured feed with bounded concurrency and
// converts the newest headlines into topics. Individual feed failures
// are logged and skipped; the call fails only when every feed fails.
func (r *RSS) FetchTopics(ctx context.Context, count int, exclude []string) (TopicBatch, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	var mu sync.Mutex
	var topics []feed.Topic
	var lastErr error

	var g errgroup.Group
	g.SetLimit(maxConcurrentFeeds)

	for _, src := range r.sources {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			items, err := r.fetchOne(ctx, src)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logging.Warn("feed fetch failed", "source", src.Name, "error", err)
				lastErr = err
				return nil // errors reported per-source, never fail the group
			}
			topics = append(topics, items...)
			return nil
		})
	}
	_ = g.Wait()

	if len(topics) == 0 {
		if lastErr != nil {
			return TopicBatch{}, lastErr
		}
		return TopicBatch{}, fmt.Errorf("no feeds returned items")
	}

	// Newest first, then trim to the requested page.
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Timestamp.After(topics[j].Timestamp)
	})

	page := make([]feed.Topic, 0, count)
	for _, t := range topics {
		if excluded[t.ID] {
			continue
		}
		page = append(page, t)
		if len(page) == count {
			break
		}
	}

	return TopicBatch{Topics: page, Mode: feed.ModeLive, HasMore: true}, nil
}

func (r *RSS) fetchOne(ctx context.Context, src FeedSource) ([]feed.Topic, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, feedTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "plunge/0.1 (+https://github.com/sgoodwin/plunge)")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	topics := make([]feed.Topic, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		topics = append(topics, convertFeedItem(item, src, now))
	}
	return topics, nil
}

// convertFeedItem maps one feed entry onto a Topic. The description
// serves as both summary and starting content; deeper levels come from
// the generation provider.
func convertFeedItem(item *gofeed.Item, src FeedSource, now time.Time) feed.Topic {
	published := now
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	body := stripHTML(item.Description)
	if body == "" {
		body = stripHTML(item.Content)
	}

	return feed.Topic{
		ID:        headlineID(item),
		Title:     strings.TrimSpace(item.Title),
		Summary:   truncateRunes(body, 240),
		Content:   body,
		Source:    src.Name,
		SourceURL: item.Link,
		Timestamp: published,
		Category:  src.Category,
	}
}

// headlineID derives a deterministic id so the same story is never
// appended twice across pagination calls.
func headlineID(item *gofeed.Item) string {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" {
		key = item.Title
	}
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:8])
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

var whitespaceRe = regexp.MustCompile(`\s+`)

// stripHTML removes tags and collapses whitespace in feed descriptions.
func stripHTML(s string) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&quot;", "\"")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// truncateRunes shortens a string to maxLen runes without breaking
// UTF-8 sequences.
func truncateRunes(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
