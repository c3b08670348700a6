// Package graph holds the in-memory directed graph backing a live graph
// service. Stores are plain data structures: they do no locking, and callers
// are expected to serialize access.
package graph

// Store is the capability every graph backend provides.
type Store[K comparable] interface {
	// AddNode adds n with no successors. Adding an existing node is a no-op.
	AddNode(n K)
	// AddEdge adds a directed edge, creating either endpoint if absent.
	AddEdge(from, to K)
	// Snapshot returns a deep copy of the adjacency mapping.
	Snapshot() map[K][]K
	// Nodes returns every node in insertion order.
	Nodes() []K
	// Successors returns a copy of the successors of n, and whether n exists.
	Successors(n K) ([]K, bool)
	Len() int
	// Reset empties the graph.
	Reset()
}

// New returns the canonical store, or the deduplicating variant when
// dedupe is set.
func New[K comparable](dedupe bool) Store[K] {
	if dedupe {
		return NewEdgeSet[K]()
	}
	return NewAdjacency[K]()
}

// order tracks node keys in insertion order.
type order[K comparable] struct {
	keys []K
}

func (o *order[K]) add(n K) {
	o.keys = append(o.keys, n)
}

func (o *order[K]) list() []K {
	out := make([]K, len(o.keys))
	copy(out, o.keys)
	return out
}
