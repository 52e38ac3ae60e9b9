package ui

import (
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"

	"github.com/sgoodwin/plunge/internal/config"
	"github.com/sgoodwin/plunge/internal/feed"
	"github.com/sgoodwin/plunge/internal/logging"
)

// Commands are the injected async operations.
// IMPORTANT: App does NOT hold the store or the content service. It
// fires these commands and receives results as messages.
type Commands struct {
	LoadSnapshot    func() tea.Cmd
	SaveSnapshot    func(sn feed.Snapshot) tea.Cmd
	LoadTopics      func(count int) tea.Cmd
	LoadMoreTopics  func(count int, exclude []string) tea.Cmd
	LoadExpansion   func(topic feed.Topic, base string, prefetch bool) tea.Cmd
	LoadDetail      func(topic feed.Topic, base string) tea.Cmd
	LoadExplanation func(topic feed.Topic, concept string, prefetch bool) tea.Cmd
	LoadAnswer      func(topic feed.Topic, question, selected string) tea.Cmd
}

// App is the root Bubble Tea model.
type App struct {
	cmds      Commands
	st        *feed.State
	features  config.Features
	batchSize int

	width  int
	height int
	ready  bool

	loadingTopics bool
	err           error  // failed topic load; blocks the feed until retried
	errPagination bool   // the failed load was a pagination batch
	depthErr      string // on-demand depth fetch failed; shown in-card

	highlightIdx int

	asking        bool
	question      textinput.Model
	answer        string
	answerLoading bool

	spin spinner.Model

	// Card slide animation.
	spring   harmonica.Spring
	slidePos float64
	slideVel float64
	sliding  bool
}

// NewApp creates the root model with the given command functions.
func NewApp(cmds Commands, features config.Features, batchSize int) App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	ti := textinput.New()
	ti.Placeholder = "What do you want to know?"
	ti.CharLimit = 200

	return App{
		cmds:          cmds,
		st:            feed.NewState(),
		features:      features,
		batchSize:     batchSize,
		question:      ti,
		spin:          sp,
		spring:        harmonica.NewSpring(harmonica.FPS(60), 8.0, 0.7),
		loadingTopics: true,
	}
}

// Init restores the previous session if one exists, otherwise loads a
// fresh batch.
func (a App) Init() tea.Cmd {
	if a.cmds.LoadSnapshot != nil {
		return tea.Batch(a.spin.Tick, a.cmds.LoadSnapshot())
	}
	return tea.Batch(a.spin.Tick, a.initialLoad())
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case SnapshotLoaded:
		if msg.Err != nil {
			logging.Warn("snapshot load failed", "error", msg.Err)
		}
		if msg.Err == nil && msg.Found && msg.Snapshot.Fresh(time.Now()) {
			a.st.Restore(msg.Snapshot)
			a.loadingTopics = false
			logging.Info("session restored", "topics", len(a.st.Topics), "index", a.st.Index)
			return a, tea.Batch(a.prefetchCmds()...)
		}
		a.loadingTopics = true
		return a, a.initialLoad()

	case TopicsLoaded:
		a.loadingTopics = false
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.err = nil
		a.highlightIdx = 0
		a.st.SetTopics(msg.Batch.Topics, msg.Batch.Mode, msg.Batch.HasMore)
		cmds := append(a.prefetchCmds(), a.checkpoint())
		return a, tea.Batch(cmds...)

	case MoreTopicsLoaded:
		a.st.FinishLoadMore()
		if msg.Err != nil {
			a.err = msg.Err
			a.errPagination = true
			return a, nil
		}
		added := a.st.AppendTopics(msg.Batch.Topics)
		a.st.HasMore = msg.Batch.HasMore
		logging.Debug("feed extended", "added", added, "total", len(a.st.Topics))
		return a, a.checkpoint()

	case ExpansionLoaded:
		if msg.Err != nil {
			if msg.Prefetch {
				logging.Debug("expansion prefetch failed", "topic", msg.TopicID, "error", msg.Err)
				return a, nil
			}
			if cur := a.st.Current(); cur != nil && cur.ID == msg.TopicID && a.st.Depth == feed.DepthExpanded {
				a.depthErr = "Could not load this view. Press ← to go back."
			}
			return a, nil
		}
		a.st.ApplyExpansion(msg.TopicID, msg.Content)
		return a, nil

	case DetailLoaded:
		if msg.Err != nil {
			if cur := a.st.Current(); cur != nil && cur.ID == msg.TopicID && a.st.Depth == feed.DepthDetail {
				a.depthErr = "Could not load this view. Press ← to go back."
			}
			return a, nil
		}
		a.st.ApplyDetail(msg.TopicID, msg.Content)
		return a, nil

	case ConceptLoaded:
		if msg.Err != nil {
			if msg.Prefetch {
				logging.Debug("concept prefetch failed", "concept", msg.Concept, "error", msg.Err)
			} else {
				a.st.ConceptFailed(msg.Concept)
			}
			return a, nil
		}
		a.st.ApplyConcept(msg.Concept, msg.Content)
		return a, nil

	case AnswerLoaded:
		a.answerLoading = false
		if msg.Err != nil {
			logging.Warn("answer failed", "error", msg.Err)
			a.answer = "Unable to answer right now."
			return a, nil
		}
		a.answer = msg.Content
		return a, nil

	case SnapshotSaved:
		if msg.Err != nil {
			logging.Warn("checkpoint failed", "error", msg.Err)
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case animTick:
		a.slidePos, a.slideVel = a.spring.Update(a.slidePos, a.slideVel, 0)
		if math.Abs(a.slidePos) < 0.5 && math.Abs(a.slideVel) < 0.5 {
			a.slidePos = 0
			a.sliding = false
			return a, nil
		}
		return a, animCmd()
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.asking {
		return a.handleQuestionKey(msg)
	}

	// A blocked feed only accepts retry and quit.
	if a.err != nil {
		switch msg.String() {
		case "q", "ctrl+c":
			return *a, tea.Quit
		case "r":
			return *a, a.retry()
		}
		return *a, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		if cp := a.checkpoint(); cp != nil {
			return *a, tea.Sequence(cp, tea.Quit)
		}
		return *a, tea.Quit

	case "up", "k":
		return *a, a.navigate(feed.DirUp)

	case "down", "j":
		return *a, a.navigate(feed.DirDown)

	case "right", "l":
		return *a, a.navigate(feed.DirRight)

	case "left", "h":
		return *a, a.navigate(feed.DirLeft)

	case "tab":
		if cur := a.st.Current(); cur != nil {
			if n := len(cur.ResolvedHighlights()); n > 0 {
				a.highlightIdx = (a.highlightIdx + 1) % n
			}
		}
		return *a, nil

	case "enter":
		return *a, a.explore()

	case "?":
		if a.features.QuestionOverlay && a.st.Current() != nil && a.st.CurrentConcept == "" {
			a.asking = true
			a.answer = ""
			a.answerLoading = false
			a.question.Reset()
			return *a, a.question.Focus()
		}
		return *a, nil

	case "esc":
		// Dismissal order: concept overlay, then depth.
		if a.st.CurrentConcept != "" {
			a.st.ClearConcept()
			return *a, nil
		}
		a.st.Depth = feed.DepthSummary
		a.depthErr = ""
		return *a, nil

	}

	return *a, nil
}

// retry re-issues whichever topic load failed.
func (a *App) retry() tea.Cmd {
	if a.errPagination {
		a.err = nil
		a.errPagination = false
		if a.cmds.LoadMoreTopics != nil && a.st.BeginLoadMore() {
			return a.cmds.LoadMoreTopics(a.batchSize, a.st.TopicIDs())
		}
		return nil
	}
	a.loadingTopics = true
	return a.initialLoad()
}

func (a *App) handleQuestionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.asking = false
		a.answer = ""
		a.answerLoading = false
		a.question.Blur()
		return *a, nil

	case "enter":
		q := strings.TrimSpace(a.question.Value())
		cur := a.st.Current()
		if q == "" || cur == nil || a.cmds.LoadAnswer == nil || a.answerLoading {
			return *a, nil
		}
		a.answerLoading = true
		a.answer = ""
		return *a, a.cmds.LoadAnswer(*cur, q, a.selectedConcept())
	}

	var cmd tea.Cmd
	a.question, cmd = a.question.Update(msg)
	return *a, cmd
}

// navigate applies one direction and turns the resulting effects into
// commands: checkpointing, prefetching, lazy depth fetches, pagination.
func (a *App) navigate(dir feed.Direction) tea.Cmd {
	eff := a.st.Navigate(dir)
	var cmds []tea.Cmd

	if eff.IndexChanged {
		a.highlightIdx = 0
		a.depthErr = ""
		a.startSlide()
		cmds = append(cmds, a.prefetchCmds()...)
		cmds = append(cmds, a.checkpoint(), animCmd())

		if a.features.Pagination && a.st.NeedsMore() && a.cmds.LoadMoreTopics != nil && a.st.BeginLoadMore() {
			cmds = append(cmds, a.cmds.LoadMoreTopics(a.batchSize, a.st.TopicIDs()))
		}
	}

	if eff.DepthChanged {
		a.depthErr = ""
		a.startSlide()
		cmds = append(cmds, a.fetchMissingDepth(), animCmd())
	}

	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// explore opens the concept overlay for the selected highlight, or
// deepens the topic when it has no concepts to explore.
func (a *App) explore() tea.Cmd {
	cur := a.st.Current()
	if cur == nil || a.st.CurrentConcept != "" {
		return nil
	}

	resolved := cur.ResolvedHighlights()
	if len(resolved) == 0 {
		return a.navigate(feed.DirRight)
	}
	if a.highlightIdx >= len(resolved) {
		a.highlightIdx = 0
	}

	text := resolved[a.highlightIdx].Text
	if a.st.ExploreConcept(text) {
		return nil // cache hit, overlay filled synchronously
	}
	if a.cmds.LoadExplanation == nil {
		return nil
	}
	return a.cmds.LoadExplanation(*cur, text, false)
}

// prefetchCmds turns the speculative fetch plan into fire-and-forget
// commands.
func (a *App) prefetchCmds() []tea.Cmd {
	var cmds []tea.Cmd
	for _, req := range a.st.Prefetch() {
		switch req.Kind {
		case feed.RequestExpansion:
			if a.cmds.LoadExpansion != nil {
				cmds = append(cmds, a.cmds.LoadExpansion(req.Topic, req.Topic.Content, true))
			}
		case feed.RequestConcept:
			if a.cmds.LoadExplanation != nil {
				cmds = append(cmds, a.cmds.LoadExplanation(req.Topic, req.Concept, true))
			}
		}
	}
	return cmds
}

// fetchMissingDepth requests content for the current depth level if the
// prefetcher has not delivered it yet.
func (a *App) fetchMissingDepth() tea.Cmd {
	if !a.st.MissingDepthContent() {
		return nil
	}
	cur := a.st.Current()
	if cur == nil {
		return nil
	}

	switch a.st.Depth {
	case feed.DepthExpanded:
		if a.cmds.LoadExpansion != nil {
			return a.cmds.LoadExpansion(*cur, cur.Content, false)
		}
	case feed.DepthDetail:
		base := a.st.Expanded[cur.ID]
		if base == "" {
			base = cur.Content
		}
		if a.cmds.LoadDetail != nil {
			return a.cmds.LoadDetail(*cur, base)
		}
	}
	return nil
}

func (a *App) initialLoad() tea.Cmd {
	a.err = nil
	if a.cmds.LoadTopics == nil {
		return nil
	}
	return a.cmds.LoadTopics(a.batchSize)
}

func (a *App) checkpoint() tea.Cmd {
	if a.cmds.SaveSnapshot == nil || len(a.st.Topics) == 0 {
		return nil
	}
	return a.cmds.SaveSnapshot(a.st.Snapshot())
}

func (a *App) selectedConcept() string {
	cur := a.st.Current()
	if cur == nil {
		return ""
	}
	resolved := cur.ResolvedHighlights()
	if len(resolved) == 0 || a.highlightIdx >= len(resolved) {
		return ""
	}
	return resolved[a.highlightIdx].Text
}

func (a *App) startSlide() {
	a.slidePos = float64(a.width) / 6
	a.slideVel = 0
	a.sliding = true
}

func animCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(time.Time) tea.Msg {
		return animTick{}
	})
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	contentHeight := a.height - 1

	switch {
	case a.err != nil:
		body := ErrorStyle.Render("Could not load topics: "+a.err.Error()) + "\n\n" +
			MutedStyle.Render("r retry  ·  q quit")
		return lipgloss.Place(a.width, contentHeight, lipgloss.Center, lipgloss.Center, body) +
			"\n" + RenderStatusBar(a.st, false, a.width)

	case a.loadingTopics && len(a.st.Topics) == 0:
		body := MutedStyle.Render(a.spin.View() + " finding topics...")
		return lipgloss.Place(a.width, contentHeight, lipgloss.Center, lipgloss.Center, body) +
			"\n" + RenderStatusBar(a.st, false, a.width)
	}

	var main string
	switch {
	case a.asking:
		main = RenderQuestionOverlay(a.question, a.answer, a.answerLoading, a.spin.View(), a.width, contentHeight)
	case a.st.CurrentConcept != "":
		main = RenderConceptOverlay(a.st.CurrentConcept, a.st.ConceptContent, a.st.ConceptLoading, a.spin.View(), a.width, contentHeight)
	default:
		main = RenderCard(a.st, a.highlightIdx, a.spin.View(), a.depthErr, a.width, contentHeight)
		if offset := int(math.Abs(a.slidePos)); a.sliding && offset > 0 {
			main = lipgloss.NewStyle().MarginLeft(offset).Render(main)
		}
	}

	return main + "\n" + RenderStatusBar(a.st, a.st.LoadingMore(), a.width)
}

// State exposes the feed aggregate (for testing).
func (a App) State() *feed.State {
	return a.st
}
