package coordinator

import "time"

// Node is one entry in the node table (spec.md §3). Index 0 is always the
// local node; Local is true iff index == 0.
type Node struct {
	Name      string
	Commander bool
	Local     bool
	LastHeard time.Time
}

// expired reports whether n should be dropped on the next ping tick. The
// local node and the current commander are never expired (spec.md §3
// "Lifetimes").
func (n *Node) expired(now time.Time, window time.Duration) bool {
	return !n.Commander && !n.Local && now.Sub(n.LastHeard) > window
}
