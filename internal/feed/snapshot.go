package feed

import (
	"encoding/json"
	"time"
)

// SnapshotKey is where the feed position lives in the key-value store.
const SnapshotKey = "feed/snapshot"

// SnapshotTTL is how old a saved snapshot may be before it is
// discarded in favor of a fresh fetch.
const SnapshotTTL = time.Hour

// Snapshot is the persisted feed position: the topic batch, the cursor,
// and when it was saved. Checkpointed on every index change and after
// every successful batch fetch.
type Snapshot struct {
	Topics  []Topic   `json:"topics"`
	Index   int       `json:"index"`
	Mode    Mode      `json:"mode"`
	SavedAt time.Time `json:"saved_at"`
}

// Snapshot captures the current feed position.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Topics:  s.Topics,
		Index:   s.Index,
		Mode:    s.Mode,
		SavedAt: time.Now(),
	}
}

// Restore hydrates the state from a snapshot. The caller is expected
// to have checked freshness first.
func (s *State) Restore(sn Snapshot) {
	s.SetTopics(sn.Topics, sn.Mode, true)
	if sn.Index >= 0 && sn.Index < len(s.Topics) {
		s.Index = sn.Index
	}
}

// Fresh reports whether the snapshot is recent enough to hydrate from.
func (sn Snapshot) Fresh(now time.Time) bool {
	if sn.SavedAt.IsZero() || len(sn.Topics) == 0 {
		return false
	}
	return now.Sub(sn.SavedAt) < SnapshotTTL
}

// Encode serializes the snapshot for the key-value store.
func (sn Snapshot) Encode() (string, error) {
	data, err := json.Marshal(sn)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeSnapshot parses a stored snapshot.
func DecodeSnapshot(data string) (Snapshot, error) {
	var sn Snapshot
	err := json.Unmarshal([]byte(data), &sn)
	return sn, err
}
