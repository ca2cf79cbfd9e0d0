package coordinator

import "sync/atomic"

// NodeView is the read-only projection of a Node exposed to internal/statusapi.
type NodeView struct {
	Name      string `json:"name"`
	Commander bool   `json:"commander"`
	Local     bool   `json:"local"`
}

// Snapshot is an immutable view of coordinator state published after every
// mutation. internal/statusapi reads it through an atomic.Value so it
// never touches coordinator-owned memory directly -- the single-owner
// state model of spec.md §5 is preserved; sync/atomic is the simplest
// correct tool for "one writer publishes, many readers observe" and
// nothing in the domain stack (gospel's generic util.Map targets
// concurrent multi-writer collections, a different problem) improves on
// it here.
type Snapshot struct {
	Nodes      []NodeView `json:"nodes"`
	ActiveNode string     `json:"active_node"`
	Pressed    []int32    `json:"pressed_keys"`
}

// snapshotStore is an atomic.Value narrowed to *Snapshot.
type snapshotStore struct {
	v atomic.Value
}

func (s *snapshotStore) store(snap *Snapshot) {
	s.v.Store(snap)
}

// Load returns the most recently published snapshot, or an empty one if
// none has been published yet.
func (s *snapshotStore) Load() *Snapshot {
	v, _ := s.v.Load().(*Snapshot)
	if v == nil {
		return &Snapshot{}
	}
	return v
}
