package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sgoodwin/plunge/internal/config"
	"github.com/sgoodwin/plunge/internal/content"
	"github.com/sgoodwin/plunge/internal/feed"
)

// mockCmd records which command builders were invoked and with what.
type mockCmd struct {
	snapshotLoads int
	saves         int
	topicLoads    int
	moreLoads     int

	expansionTopics   []string
	expansionPrefetch []bool
	detailTopics      []string
	explanations      []string
	explainPrefetch   []bool
	answers           []string
	answerSelected    []string
}

func (m *mockCmd) commands() Commands {
	return Commands{
		LoadSnapshot: func() tea.Cmd {
			m.snapshotLoads++
			return nil
		},
		SaveSnapshot: func(feed.Snapshot) tea.Cmd {
			m.saves++
			return nil
		},
		LoadTopics: func(int) tea.Cmd {
			m.topicLoads++
			return nil
		},
		LoadMoreTopics: func(int, []string) tea.Cmd {
			m.moreLoads++
			return nil
		},
		LoadExpansion: func(topic feed.Topic, _ string, prefetch bool) tea.Cmd {
			m.expansionTopics = append(m.expansionTopics, topic.ID)
			m.expansionPrefetch = append(m.expansionPrefetch, prefetch)
			return nil
		},
		LoadDetail: func(topic feed.Topic, _ string) tea.Cmd {
			m.detailTopics = append(m.detailTopics, topic.ID)
			return nil
		},
		LoadExplanation: func(_ feed.Topic, concept string, prefetch bool) tea.Cmd {
			m.explanations = append(m.explanations, concept)
			m.explainPrefetch = append(m.explainPrefetch, prefetch)
			return nil
		},
		LoadAnswer: func(_ feed.Topic, question, selected string) tea.Cmd {
			m.answers = append(m.answers, question)
			m.answerSelected = append(m.answerSelected, selected)
			return nil
		},
	}
}

func testTopics() []feed.Topic {
	return []feed.Topic{
		{
			ID:       "t1",
			Title:    "First Topic",
			Summary:  "Short take.",
			Content:  "A longer body mentioning quantum error correction for depth.",
			Category: feed.CategoryScience,
			Highlights: []feed.Highlight{
				{Text: "quantum error correction"},
			},
		},
		{ID: "t2", Title: "Second Topic", Summary: "s2", Content: "c2"},
		{ID: "t3", Title: "Third Topic", Summary: "s3", Content: "c3"},
		{ID: "t4", Title: "Fourth Topic", Summary: "s4", Content: "c4"},
		{ID: "t5", Title: "Fifth Topic", Summary: "s5", Content: "c5"},
	}
}

func newTestApp(mock *mockCmd) App {
	app := NewApp(mock.commands(), config.Features{Pagination: true, QuestionOverlay: true}, 5)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return model.(App)
}

func loadedApp(t *testing.T, mock *mockCmd) App {
	t.Helper()
	app := newTestApp(mock)
	model, _ := app.Update(TopicsLoaded{Batch: content.TopicBatch{
		Topics:  testTopics(),
		Mode:    feed.ModeLive,
		HasMore: true,
	}})
	return model.(App)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestAppInitLoadsSnapshot(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(mock)

	if cmd := app.Init(); cmd == nil {
		t.Fatal("Init should return a command")
	}
	if mock.snapshotLoads != 1 {
		t.Errorf("snapshot loads = %d, want 1", mock.snapshotLoads)
	}
	if mock.topicLoads != 0 {
		t.Error("Init should not load topics before the snapshot result")
	}
}

func TestAppStaleSnapshotFallsBackToFetch(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(mock)

	stale := feed.Snapshot{
		Topics:  testTopics(),
		Index:   2,
		SavedAt: time.Now().Add(-2 * time.Hour),
	}
	model, _ := app.Update(SnapshotLoaded{Snapshot: stale, Found: true})
	updated := model.(App)

	if mock.topicLoads != 1 {
		t.Errorf("topic loads = %d, want 1 after stale snapshot", mock.topicLoads)
	}
	if len(updated.State().Topics) != 0 {
		t.Error("stale snapshot should not hydrate the feed")
	}
}

func TestAppFreshSnapshotRestores(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(mock)

	fresh := feed.Snapshot{
		Topics:  testTopics(),
		Index:   2,
		Mode:    feed.ModeLive,
		SavedAt: time.Now().Add(-5 * time.Minute),
	}
	model, _ := app.Update(SnapshotLoaded{Snapshot: fresh, Found: true})
	updated := model.(App)

	if mock.topicLoads != 0 {
		t.Error("fresh snapshot should not trigger a topic fetch")
	}
	if updated.State().Index != 2 {
		t.Errorf("Index = %d, want the saved position 2", updated.State().Index)
	}
	// Restoring warms the prefetcher around the saved position.
	if len(mock.expansionTopics) == 0 {
		t.Error("restore should prefetch around the saved position")
	}
}

func TestAppTopicsLoadedPrefetches(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	st := app.State()
	if len(st.Topics) != 5 || st.Mode != feed.ModeLive {
		t.Fatalf("topics = %d mode = %v", len(st.Topics), st.Mode)
	}

	// Current topic plus two neighbors get expansions; the current
	// topic's concept gets a speculative explanation.
	if len(mock.expansionTopics) != 3 {
		t.Errorf("expansion requests = %v, want t1..t3", mock.expansionTopics)
	}
	for _, pf := range mock.expansionPrefetch {
		if !pf {
			t.Error("batch-load expansions should be marked prefetch")
		}
	}
	if len(mock.explanations) != 1 || mock.explanations[0] != "quantum error correction" {
		t.Errorf("explanations = %v", mock.explanations)
	}
	if mock.saves != 1 {
		t.Errorf("saves = %d, want checkpoint after load", mock.saves)
	}
}

func TestAppTopicsLoadedErrorAndRetry(t *testing.T) {
	mock := &mockCmd{}
	app := newTestApp(mock)

	model, _ := app.Update(TopicsLoaded{Err: errors.New("all providers down")})
	updated := model.(App)
	if updated.err == nil {
		t.Fatal("load failure should set the error state")
	}

	model, _ = updated.Update(keyRune('r'))
	updated = model.(App)
	if mock.topicLoads != 1 {
		t.Errorf("topic loads = %d, want 1 after retry", mock.topicLoads)
	}
	if updated.err != nil {
		t.Error("retry should clear the error state")
	}
}

func TestAppNavigationPrefetchesOnce(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	before := len(mock.expansionTopics)
	model, _ := app.Update(keyRune('j'))
	updated := model.(App)

	if updated.State().Index != 1 {
		t.Fatalf("Index = %d, want 1", updated.State().Index)
	}
	// One step forward exposes exactly one new neighbor.
	if len(mock.expansionTopics) != before+1 {
		t.Errorf("expansion requests = %v", mock.expansionTopics)
	}

	// Going back revisits only already-requested topics.
	before = len(mock.expansionTopics)
	model, _ = updated.Update(keyRune('k'))
	if len(mock.expansionTopics) != before {
		t.Error("revisiting should not re-request expansions")
	}
	_ = model
}

func TestAppNavigationCheckpoints(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	saves := mock.saves
	model, _ := app.Update(keyRune('j'))
	if mock.saves != saves+1 {
		t.Errorf("saves = %d, want checkpoint on index change", mock.saves)
	}

	// Depth changes don't checkpoint; only position matters.
	saves = mock.saves
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	if mock.saves != saves {
		t.Error("depth change should not checkpoint")
	}
}

func TestAppDeepenFetchesMissingContent(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyRight})
	updated := model.(App)

	if updated.State().Depth != feed.DepthExpanded {
		t.Fatalf("Depth = %v, want expanded", updated.State().Depth)
	}
	// The prefetcher already requested t1's expansion at load time, so
	// deepening issues an on-demand (non-prefetch) fetch for display.
	last := len(mock.expansionPrefetch) - 1
	if mock.expansionPrefetch[last] {
		t.Error("on-demand depth fetch should not be marked prefetch")
	}

	// With content cached, deepening to detail requests detail content.
	updated.State().ApplyExpansion("t1", "expanded text")
	model, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRight})
	updated = model.(App)
	if updated.State().Depth != feed.DepthDetail {
		t.Fatalf("Depth = %v, want detail", updated.State().Depth)
	}
	if len(mock.detailTopics) != 1 || mock.detailTopics[0] != "t1" {
		t.Errorf("detail requests = %v", mock.detailTopics)
	}
}

func TestAppEnterExploresConcept(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	explains := len(mock.explanations)
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated := model.(App)

	st := updated.State()
	if st.CurrentConcept != "quantum error correction" {
		t.Fatalf("CurrentConcept = %q", st.CurrentConcept)
	}
	if !st.ConceptLoading {
		t.Error("cache miss should leave the overlay loading")
	}
	if len(mock.explanations) != explains+1 {
		t.Error("cache miss should request an explanation")
	}

	// Left closes the overlay without changing depth.
	model, _ = updated.Update(tea.KeyMsg{Type: tea.KeyLeft})
	updated = model.(App)
	if updated.State().CurrentConcept != "" {
		t.Error("left should close the concept overlay")
	}
	if updated.State().Depth != feed.DepthSummary {
		t.Error("closing the overlay should not change depth")
	}
}

func TestAppEnterCacheHitNeedsNoCommand(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)
	app.State().ApplyConcept("quantum error correction", "cached explanation")

	explains := len(mock.explanations)
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated := model.(App)

	if len(mock.explanations) != explains {
		t.Error("cache hit should not request an explanation")
	}
	if updated.State().ConceptContent != "cached explanation" {
		t.Errorf("ConceptContent = %q", updated.State().ConceptContent)
	}
	if updated.State().ConceptLoading {
		t.Error("cache hit should not show the loading state")
	}
}

func TestAppConceptFailureShowsFallback(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated := model.(App)

	model, _ = updated.Update(ConceptLoaded{
		Concept: "quantum error correction",
		Err:     errors.New("provider down"),
	})
	updated = model.(App)

	want := `Unable to research "quantum error correction" at this time.`
	if updated.State().ConceptContent != want {
		t.Errorf("ConceptContent = %q, want %q", updated.State().ConceptContent, want)
	}
}

func TestAppPaginationTriggersNearEnd(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	// Index 1 leaves 3 topics ahead, at the threshold.
	model, _ := app.Update(keyRune('j'))
	if mock.moreLoads != 1 {
		t.Fatalf("more loads = %d, want 1", mock.moreLoads)
	}

	// While the request is in flight, further movement doesn't stack.
	model, _ = model.Update(keyRune('j'))
	if mock.moreLoads != 1 {
		t.Errorf("more loads = %d, in-flight guard failed", mock.moreLoads)
	}

	// Completion appends and re-arms the trigger.
	model, _ = model.Update(MoreTopicsLoaded{Batch: content.TopicBatch{
		Topics:  []feed.Topic{{ID: "t6", Title: "Sixth Topic"}},
		HasMore: true,
	}})
	updated := model.(App)
	if len(updated.State().Topics) != 6 {
		t.Errorf("topics = %d, want 6", len(updated.State().Topics))
	}
	if updated.State().LoadingMore() {
		t.Error("completion should clear the in-flight flag")
	}
}

func TestAppPaginationFailureBlocksAndRetries(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	model, _ := app.Update(keyRune('j')) // crosses the threshold
	if mock.moreLoads != 1 {
		t.Fatalf("more loads = %d, want 1", mock.moreLoads)
	}

	model, _ = model.Update(MoreTopicsLoaded{Err: errors.New("network down")})
	updated := model.(App)
	if updated.err == nil {
		t.Fatal("pagination failure should block the feed")
	}

	// Navigation is refused while blocked.
	idx := updated.State().Index
	model, _ = updated.Update(keyRune('j'))
	updated = model.(App)
	if updated.State().Index != idx {
		t.Error("navigation should halt until retried")
	}

	// Retry re-issues the pagination request, not a full reload.
	model, _ = updated.Update(keyRune('r'))
	updated = model.(App)
	if mock.moreLoads != 2 {
		t.Errorf("more loads = %d, want 2 after retry", mock.moreLoads)
	}
	if mock.topicLoads != 0 {
		t.Error("pagination retry should not reset the feed")
	}
	if updated.err != nil {
		t.Error("retry should clear the blocking error")
	}
}

func TestAppPaginationDisabledByFeature(t *testing.T) {
	mock := &mockCmd{}
	app := NewApp(mock.commands(), config.Features{Pagination: false}, 5)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = model.Update(TopicsLoaded{Batch: content.TopicBatch{
		Topics: testTopics(), Mode: feed.ModeLive, HasMore: true,
	}})

	model, _ = model.Update(keyRune('j'))
	if mock.moreLoads != 0 {
		t.Errorf("more loads = %d, want 0 with pagination disabled", mock.moreLoads)
	}
}

func TestAppQuestionOverlay(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	model, _ := app.Update(keyRune('?'))
	updated := model.(App)
	if !updated.asking {
		t.Fatal("? should open the question overlay")
	}

	updated.question.SetValue("why does this matter")
	model, _ = updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated = model.(App)

	if len(mock.answers) != 1 || mock.answers[0] != "why does this matter" {
		t.Errorf("answers = %v", mock.answers)
	}
	if mock.answerSelected[0] != "quantum error correction" {
		t.Errorf("selected = %q, want the highlighted concept", mock.answerSelected[0])
	}
	if !updated.answerLoading {
		t.Error("submit should enter the loading state")
	}

	model, _ = updated.Update(AnswerLoaded{Question: "why does this matter", Content: "because"})
	updated = model.(App)
	if updated.answer != "because" || updated.answerLoading {
		t.Errorf("answer = %q loading = %v", updated.answer, updated.answerLoading)
	}

	model, _ = updated.Update(tea.KeyMsg{Type: tea.KeyEsc})
	updated = model.(App)
	if updated.asking {
		t.Error("esc should close the question overlay")
	}
}

func TestAppQuestionOverlayDisabled(t *testing.T) {
	mock := &mockCmd{}
	app := NewApp(mock.commands(), config.Features{}, 5)
	model, _ := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = model.Update(TopicsLoaded{Batch: content.TopicBatch{Topics: testTopics()}})

	model, _ = model.Update(keyRune('?'))
	updated := model.(App)
	if updated.asking {
		t.Error("? should do nothing when the overlay feature is off")
	}
}

func TestAppQuitCheckpoints(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	saves := mock.saves
	_, cmd := app.Update(keyRune('q'))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if mock.saves != saves+1 {
		t.Error("quit should checkpoint the session")
	}
}

func TestAppStaleExpansionStillLands(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	// Completion for a topic that is not current warms the cache.
	model, _ := app.Update(ExpansionLoaded{TopicID: "t3", Content: "prefetched", Prefetch: true})
	updated := model.(App)
	if updated.State().Expanded["t3"] != "prefetched" {
		t.Error("stale completion should still be merged by id")
	}
}

func TestAppPrefetchFailureIsSilent(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	model, _ := app.Update(ExpansionLoaded{TopicID: "t1", Prefetch: true, Err: errors.New("down")})
	updated := model.(App)
	if updated.depthErr != "" {
		t.Error("prefetch failure should not surface in the card")
	}
	if updated.err != nil {
		t.Error("prefetch failure should not set the hard error state")
	}
}

func TestAppView(t *testing.T) {
	mock := &mockCmd{}
	app := loadedApp(t, mock)

	if view := app.View(); view == "" {
		t.Error("View should not be empty")
	}

	// Concept overlay takes over the content area.
	model, _ := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	updated := model.(App)
	if view := updated.View(); view == "" {
		t.Error("overlay view should not be empty")
	}
}

func TestAppViewNotReady(t *testing.T) {
	mock := &mockCmd{}
	app := NewApp(mock.commands(), config.Features{}, 5)

	if view := app.View(); view != "Loading..." {
		t.Errorf("View should show 'Loading...' before the first resize, got %q", view)
	}
}
