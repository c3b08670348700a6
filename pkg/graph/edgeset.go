package graph

// interface guard ensures EdgeSet implements Store
var _ Store[string] = &EdgeSet[string]{}

// EdgeSet is the deduplicating variant: a repeated (u, v) is ignored, so
// u's successors hold v at most once, in first-insertion order.
type EdgeSet[K comparable] struct {
	list *Adjacency[K]
	seen map[K]map[K]struct{}
}

func NewEdgeSet[K comparable]() *EdgeSet[K] {
	return &EdgeSet[K]{
		list: NewAdjacency[K](),
		seen: make(map[K]map[K]struct{}),
	}
}

func (e *EdgeSet[K]) AddNode(n K) {
	e.list.AddNode(n)
}

func (e *EdgeSet[K]) AddEdge(from, to K) {
	out, ok := e.seen[from]
	if !ok {
		out = make(map[K]struct{})
		e.seen[from] = out
	}
	if _, dup := out[to]; dup {
		return
	}
	out[to] = struct{}{}
	e.list.AddEdge(from, to)
}

func (e *EdgeSet[K]) Snapshot() map[K][]K        { return e.list.Snapshot() }
func (e *EdgeSet[K]) Nodes() []K                 { return e.list.Nodes() }
func (e *EdgeSet[K]) Successors(n K) ([]K, bool) { return e.list.Successors(n) }
func (e *EdgeSet[K]) Len() int                   { return e.list.Len() }

func (e *EdgeSet[K]) Reset() {
	e.list.Reset()
	e.seen = make(map[K]map[K]struct{})
}
