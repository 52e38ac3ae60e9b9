package content

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sgoodwin/plunge/internal/feed"
)

// demoSeed is the raw material for offline topics. Ids are synthetic
// and assigned per session.
type demoSeed struct {
	title      string
	summary    string
	content    string
	category   feed.Category
	highlights []string
}

var demoSeeds = []demoSeed{
	{
		title:    "Quantum Error Correction Reaches a Practical Milestone",
		summary:  "A research group demonstrated sustained logical qubits below the error threshold. The result moves fault-tolerant machines from theory toward engineering.",
		content:  "Scientists discovered a new quantum error correction method that keeps logical qubits stable for longer than the underlying hardware's coherence time. The demonstration used a surface code running on superconducting qubits, with a decoder fast enough to keep up in real time.\n\nThe significance is less about any single number and more about the trend: every component of the fault-tolerance stack improved together. If the scaling continues, useful error-corrected machines stop being a physics problem and become an engineering schedule.",
		category: feed.CategoryScience,
		highlights: []string{
			"quantum error correction",
			"surface code",
			"coherence time",
		},
	},
	{
		title:    "The Quiet Rewrite of the Internet's Routing Layer",
		summary:  "Operators are replacing decades-old border routing assumptions with cryptographic route validation. Adoption crossed the point where invalid announcements are mostly dropped.",
		content:  "For thirty years the internet's routing system ran on trust: any network could announce any address block, and the rest of the world would believe it. Route hijacks, accidental and otherwise, were the price. RPKI changes the economics by letting address holders sign which networks may originate their prefixes.\n\nThe milestone that slipped by quietly: a majority of large transit providers now drop invalid announcements by default, which means a signed prefix is meaningfully protected for the first time.",
		category: feed.CategoryTech,
		highlights: []string{
			"RPKI",
			"route hijacks",
		},
	},
	{
		title:    "Central Banks Confront the Term Premium's Return",
		summary:  "Long-dated yields are moving independently of policy rates again. The shift complicates every debt-heavy budget on the planet.",
		content:  "After a decade in which the term premium was pinned near zero, investors are once again demanding extra compensation for holding long-dated government bonds. The drivers are familiar: supply, inflation uncertainty, and the slow withdrawal of central banks as price-insensitive buyers.\n\nFor finance ministries that refinanced short during the cheap years, the arithmetic is unforgiving. Interest costs compound quietly, then suddenly.",
		category: feed.CategoryFinance,
		highlights: []string{
			"term premium",
			"price-insensitive buyers",
		},
	},
	{
		title:    "What the New Wave of GLP-1 Research Actually Shows",
		summary:  "Trials keep finding effects beyond weight loss, from cardiovascular risk to addictive behavior. Researchers are arguing about mechanism, not direction.",
		content:  "The second act of the GLP-1 story is stranger than the first. Beyond the headline weight-loss numbers, trial after trial reports reductions in cardiovascular events, kidney disease progression, and possibly compulsive behaviors ranging from alcohol use to gambling.\n\nThe mechanistic debate matters because it determines who should get the drugs and for how long. If the benefits run through weight alone, they are one tool among several. If the receptor pathways act directly on inflammation and reward circuits, medicine has stumbled into something much bigger.",
		category: feed.CategoryHealth,
		highlights: []string{
			"GLP-1",
			"reward circuits",
		},
	},
	{
		title:    "The Box Office Learns to Live Without the Middle",
		summary:  "Mid-budget films have all but vanished from theaters. The industry is quietly reorganizing around very large and very small bets.",
		content:  "Theatrical releases now cluster at the extremes: franchise tentpoles above $150 million and specialty films below $20 million, with little in between. The mid-budget drama that sustained a generation of filmmakers migrated to streaming, then partially evaporated when streaming economics tightened.\n\nExhibitors feel the change as volatility. A strong tentpole month looks like a recovery; a weak one looks like an extinction event. The truth is structural, not cyclical.",
		category: feed.CategoryCulture,
		highlights: []string{
			"mid-budget drama",
		},
	},
	{
		title:    "Grid-Scale Batteries Start Setting Prices",
		summary:  "In several markets, storage now bids the marginal megawatt during evening peaks. The effect on price spreads is visible in the data.",
		content:  "Battery storage crossed a threshold this year: in California and South Australia, batteries regularly set the clearing price during the evening ramp, a role gas peakers held for decades. The consequence is a compression of the very price spreads that justified the batteries, a feedback loop the industry calls cannibalization.\n\nThe next phase depends on duration. Four-hour systems are saturating their niche; eight-hour economics remain unproven outside subsidy programs.",
		category: feed.CategoryNews,
		highlights: []string{
			"evening ramp",
			"cannibalization",
		},
	},
	{
		title:    "The Transfer Market Discovers Ligament Risk Pricing",
		summary:  "Clubs are building injury-probability models into transfer fees. Agents dislike it for the obvious reason.",
		content:  "Football's transfer market has always priced age and form. What changed is the arrival of biomechanical screening data in fee negotiations: clubs now discount players whose movement signatures correlate with soft-tissue injury risk, and a small industry of consultancies sells the models.\n\nThe players' union objects that the models are unauditable and the data was collected for training purposes, not valuation. The fight over who owns an athlete's movement data is just beginning.",
		category: feed.CategorySports,
		highlights: []string{
			"biomechanical screening",
		},
	},
	{
		title:    "Parliaments Rediscover the Committee Room",
		summary:  "Legislatures in several democracies are shifting real power back to committees. The change is procedural, boring, and consequential.",
		content:  "The most significant political reform of the year received almost no coverage because it is procedural: several parliaments rewrote their standing orders to give committees agenda rights, subpoena power, and guaranteed floor time. Committee rooms are where legislation is actually improved, and where minority parties can matter.\n\nPolitical scientists have argued for decades that strong committees correlate with higher-quality legislation and lower polarization. The live experiment is whether the causality runs the way they hope.",
		category: feed.CategoryPolitics,
		highlights: []string{
			"standing orders",
			"agenda rights",
		},
	},
}

// Demo serves built-in content so every operation works offline. It is
// the terminal link of the provider chain and never fails.
type Demo struct {
	pool   []feed.Topic
	cursor int
}

// NewDemo builds the session's demo pool with fresh synthetic ids.
func NewDemo() *Demo {
	now := time.Now()
	pool := make([]feed.Topic, len(demoSeeds))
	for i, seed := range demoSeeds {
		t := feed.Topic{
			ID:        uuid.NewString(),
			Title:     seed.title,
			Summary:   seed.summary,
			Content:   seed.content,
			Source:    "Plunge Demo",
			Timestamp: now.Add(-time.Duration(i*7) * time.Minute),
			Category:  seed.category,
		}
		for _, h := range seed.highlights {
			t.Highlights = append(t.Highlights, feed.Highlight{Text: h})
		}
		pool[i] = t
	}
	return &Demo{pool: pool}
}

// Name identifies the provider in logs.
func (d *Demo) Name() string {
	return "demo"
}

// FetchTopics pages through the demo pool. HasMore turns false once
// the pool is exhausted; demo sessions end rather than loop.
func (d *Demo) FetchTopics(_ context.Context, count int, exclude []string) (TopicBatch, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	var page []feed.Topic
	for d.cursor < len(d.pool) && len(page) < count {
		t := d.pool[d.cursor]
		d.cursor++
		if excluded[t.ID] {
			continue
		}
		page = append(page, t)
	}

	return TopicBatch{
		Topics:  page,
		Mode:    feed.ModeDemo,
		HasMore: d.cursor < len(d.pool),
	}, nil
}

// FetchExpansion returns canned deep-dive text.
func (d *Demo) FetchExpansion(_ context.Context, topic feed.Topic, base string) (string, error) {
	return fmt.Sprintf("%s\n\nGoing deeper on %q: this is sample content served while no live provider is configured. "+
		"In a live session this level would add background, the key players, and what to watch next.",
		base, topic.Title), nil
}

// FetchExplanation returns a canned explanation.
func (d *Demo) FetchExplanation(_ context.Context, concept string, topic feed.Topic) (string, error) {
	return fmt.Sprintf("%s is a term from %q. This is sample research content; configure an API key for live explanations. "+
		"The phrase appears in the topic as: %s",
		strings.TrimSpace(concept), topic.Title, excerptAround(topic.Content, concept)), nil
}

// FetchAnswer returns a canned answer.
func (d *Demo) FetchAnswer(_ context.Context, question string, topic feed.Topic, selected string) (string, error) {
	answer := fmt.Sprintf("Sample answer to %q about %q.", strings.TrimSpace(question), topic.Title)
	if selected != "" {
		answer += fmt.Sprintf(" You selected: %q.", selected)
	}
	return answer + " Configure an API key for live answers.", nil
}

// excerptAround returns a short window of content surrounding the
// first occurrence of phrase.
func excerptAround(content, phrase string) string {
	idx := strings.Index(strings.ToLower(content), strings.ToLower(strings.TrimSpace(phrase)))
	if idx < 0 {
		return truncateRunes(content, 120)
	}
	start := idx - 40
	if start < 0 {
		start = 0
	}
	end := idx + len(phrase) + 40
	if end > len(content) {
		end = len(content)
	}
	return "..." + strings.TrimSpace(content[start:end]) + "..."
}
