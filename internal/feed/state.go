package feed

import (
	"fmt"
)

// Depth is the three-level disclosure state for the current topic.
type Depth int

const (
	DepthSummary Depth = iota
	DepthExpanded
	DepthDetail
)

// String returns the depth name for status display.
func (d Depth) String() string {
	switch d {
	case DepthExpanded:
		return "expanded"
	case DepthDetail:
		return "detail"
	default:
		return "summary"
	}
}

// Direction is an abstract navigation command from the input layer.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// Mode records whether the last topic batch came from real external
// services or from fallback content.
type Mode string

const (
	ModeLive Mode = "live"
	ModeDemo Mode = "demo"
)

// RequestKind tags a prefetch intent.
type RequestKind int

const (
	RequestExpansion RequestKind = iota
	RequestConcept
)

// Request is a speculative fetch intent produced by the prefetch
// planner. The UI layer turns it into a fire-and-forget command.
type Request struct {
	Kind    RequestKind
	Topic   Topic
	Concept string // original casing, RequestConcept only
}

// DefaultPreload is how many upcoming topics get their deep-dive
// content prefetched on each index change.
const DefaultPreload = 2

// DefaultLoadThreshold is how close to the end of the topic list the
// cursor may get before another batch is requested.
const DefaultLoadThreshold = 3

// State is the feed controller's single owned aggregate. It is mutated
// only from the UI event loop; async completions are merged in through
// the Apply* methods, keyed by topic id or concept text, so a stale
// completion is harmless (it just warms the cache).
type State struct {
	Topics []Topic
	Index  int
	Depth  Depth

	// LastMove drives the card slide animation.
	LastMove Direction

	// Lazily populated deep-dive content, keyed by topic id.
	Expanded map[string]string
	Detail   map[string]string

	// ConceptCache maps normalized concept text to its explanation.
	// Shared across all topics for the session.
	ConceptCache   map[string]string
	CurrentConcept string // original casing, "" when no overlay
	ConceptContent string
	ConceptLoading bool

	Mode    Mode
	HasMore bool

	PreloadCount  int
	LoadThreshold int

	// Dedup sets. Session-scoped; cleared only by a full reset.
	requested map[string]bool // expansion prefetch, by topic id
	inflight  map[string]bool // concept prefetch, by topicID:text
	loading   bool            // pagination in flight
}

// NewState creates an empty feed state.
func NewState() *State {
	return &State{
		Expanded:      make(map[string]string),
		Detail:        make(map[string]string),
		ConceptCache:  make(map[string]string),
		Mode:          ModeDemo,
		PreloadCount:  DefaultPreload,
		LoadThreshold: DefaultLoadThreshold,
		requested:     make(map[string]bool),
		inflight:      make(map[string]bool),
	}
}

// Effects describes what a navigation command changed, so the caller
// can checkpoint, prefetch, or lazily fetch content.
type Effects struct {
	IndexChanged  bool
	DepthChanged  bool
	ConceptClosed bool
}

// Current returns the topic under the cursor, or nil on an empty feed.
func (s *State) Current() *Topic {
	if s.Index < 0 || s.Index >= len(s.Topics) {
		return nil
	}
	return &s.Topics[s.Index]
}

// Navigate applies one directional command.
//
// down/up move between topics, resetting depth to summary and closing
// any open concept overlay; both are no-ops at the list bounds.
// right deepens summary -> expanded -> detail; left shallows back.
// When a concept overlay is open, left closes the overlay instead of
// changing depth.
func (s *State) Navigate(dir Direction) Effects {
	var eff Effects

	switch dir {
	case DirDown:
		if s.Index+1 >= len(s.Topics) {
			return eff
		}
		s.Index++
		s.afterMove(dir)
		eff.IndexChanged = true

	case DirUp:
		if s.Index == 0 {
			return eff
		}
		s.Index--
		s.afterMove(dir)
		eff.IndexChanged = true

	case DirRight:
		if s.Depth < DepthDetail {
			s.Depth++
			s.LastMove = dir
			eff.DepthChanged = true
		}

	case DirLeft:
		// Overlay dismissal takes priority over depth changes.
		if s.CurrentConcept != "" {
			s.ClearConcept()
			eff.ConceptClosed = true
			return eff
		}
		if s.Depth > DepthSummary {
			s.Depth--
			s.LastMove = dir
			eff.DepthChanged = true
		}
	}

	return eff
}

func (s *State) afterMove(dir Direction) {
	s.Depth = DepthSummary
	s.LastMove = dir
	s.ClearConcept()
}

// MissingDepthContent reports whether the current topic lacks cached
// content for the current depth level. Summary content always exists
// on the topic itself.
func (s *State) MissingDepthContent() bool {
	cur := s.Current()
	if cur == nil {
		return false
	}
	switch s.Depth {
	case DepthExpanded:
		_, ok := s.Expanded[cur.ID]
		return !ok
	case DepthDetail:
		_, ok := s.Detail[cur.ID]
		return !ok
	}
	return false
}

// Prefetch computes the speculative fetch plan for the current
// neighborhood and marks the dedup sets, so a topic is never requested
// twice in a session even if revisited. Safe to call after every index
// change and after the initial load.
func (s *State) Prefetch() []Request {
	cur := s.Current()
	if cur == nil {
		return nil
	}

	var plan []Request

	if !s.requested[cur.ID] {
		s.requested[cur.ID] = true
		plan = append(plan, Request{Kind: RequestExpansion, Topic: *cur})
	}

	for _, h := range cur.ResolvedHighlights() {
		key := NormalizeConcept(h.Text)
		if key == "" {
			continue
		}
		if _, cached := s.ConceptCache[key]; cached {
			continue
		}
		flight := cur.ID + ":" + key
		if s.inflight[flight] {
			continue
		}
		s.inflight[flight] = true
		plan = append(plan, Request{Kind: RequestConcept, Topic: *cur, Concept: h.Text})
	}

	// Upcoming neighbors, capped at the end of the loaded list.
	for i := s.Index + 1; i <= s.Index+s.PreloadCount && i < len(s.Topics); i++ {
		t := s.Topics[i]
		if s.requested[t.ID] {
			continue
		}
		s.requested[t.ID] = true
		plan = append(plan, Request{Kind: RequestExpansion, Topic: t})
	}

	return plan
}

// SetTopics performs a full reset with a fresh batch: position,
// depth, caches, and dedup sets all start over.
func (s *State) SetTopics(topics []Topic, mode Mode, hasMore bool) {
	s.Topics = topics
	s.Index = 0
	s.Depth = DepthSummary
	s.Expanded = make(map[string]string)
	s.Detail = make(map[string]string)
	s.ConceptCache = make(map[string]string)
	s.requested = make(map[string]bool)
	s.inflight = make(map[string]bool)
	s.loading = false
	s.Mode = mode
	s.HasMore = hasMore
	s.ClearConcept()
}

// AppendTopics grows the list with genuinely new topics, filtering the
// batch by id and by truncated-title similarity against everything
// already loaded. It never rewinds the index, reorders, or removes.
// Returns the number of topics actually appended.
func (s *State) AppendTopics(batch []Topic) int {
	seenID := make(map[string]bool, len(s.Topics))
	seenTitle := make(map[string]bool, len(s.Topics))
	for _, t := range s.Topics {
		seenID[t.ID] = true
		seenTitle[titleKey(t.Title)] = true
	}

	added := 0
	for _, t := range batch {
		if t.ID == "" || seenID[t.ID] {
			continue
		}
		if k := titleKey(t.Title); seenTitle[k] {
			continue
		} else {
			seenTitle[k] = true
		}
		seenID[t.ID] = true
		s.Topics = append(s.Topics, t)
		added++
	}
	return added
}

// NeedsMore reports whether the cursor is close enough to the end of
// the loaded list that another batch should be requested.
func (s *State) NeedsMore() bool {
	if !s.HasMore || s.loading || len(s.Topics) == 0 {
		return false
	}
	return len(s.Topics)-1-s.Index <= s.LoadThreshold
}

// BeginLoadMore marks a pagination request in flight. Returns false if
// one is already running.
func (s *State) BeginLoadMore() bool {
	if s.loading {
		return false
	}
	s.loading = true
	return true
}

// FinishLoadMore clears the in-flight flag. Called on both success and
// failure.
func (s *State) FinishLoadMore() {
	s.loading = false
}

// LoadingMore reports whether a pagination request is in flight.
func (s *State) LoadingMore() bool {
	return s.loading
}

// TopicIDs returns the ids of all loaded topics, for exclude lists.
func (s *State) TopicIDs() []string {
	ids := make([]string, len(s.Topics))
	for i, t := range s.Topics {
		ids[i] = t.ID
	}
	return ids
}

// ExploreConcept resolves user-selected text cache-first. On a hit the
// overlay content is set synchronously and the return value is true;
// on a miss the overlay enters its loading state and the caller must
// issue the explanation request.
func (s *State) ExploreConcept(text string) (hit bool) {
	key := NormalizeConcept(text)
	if key == "" {
		return true // nothing to do; upstream filters empty selections
	}
	s.CurrentConcept = text
	if content, ok := s.ConceptCache[key]; ok {
		s.ConceptContent = content
		s.ConceptLoading = false
		return true
	}
	s.ConceptContent = ""
	s.ConceptLoading = true
	return false
}

// ClearConcept dismisses the concept overlay.
func (s *State) ClearConcept() {
	s.CurrentConcept = ""
	s.ConceptContent = ""
	s.ConceptLoading = false
}

// ApplyExpansion merges deep-dive content for a topic into the cache.
// Stale completions (topic no longer current) still land, keyed by id.
func (s *State) ApplyExpansion(topicID, content string) {
	if topicID == "" || content == "" {
		return
	}
	s.Expanded[topicID] = content
}

// ApplyDetail merges detail-level content for a topic into the cache.
func (s *State) ApplyDetail(topicID, content string) {
	if topicID == "" || content == "" {
		return
	}
	s.Detail[topicID] = content
}

// ApplyConcept merges an explanation into the shared concept cache and,
// if the overlay is waiting on this concept, fills it in.
func (s *State) ApplyConcept(concept, content string) {
	key := NormalizeConcept(concept)
	if key == "" || content == "" {
		return
	}
	s.ConceptCache[key] = content
	if NormalizeConcept(s.CurrentConcept) == key {
		s.ConceptContent = content
		s.ConceptLoading = false
	}
}

// ConceptFailed surfaces a terminal, non-retried failure inside the
// overlay. Prefetch failures never reach here; they are only logged.
func (s *State) ConceptFailed(concept string) {
	if NormalizeConcept(s.CurrentConcept) != NormalizeConcept(concept) {
		return
	}
	s.ConceptContent = fmt.Sprintf("Unable to research %q at this time.", concept)
	s.ConceptLoading = false
}
