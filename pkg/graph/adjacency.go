package graph

// interface guard ensures Adjacency implements Store
var _ Store[string] = &Adjacency[string]{}

// Adjacency is an append-only adjacency list. Edges are not deduplicated:
// adding (u, v) twice leaves v in u's successors twice, in call order.
type Adjacency[K comparable] struct {
	succ  map[K][]K
	order order[K]
}

func NewAdjacency[K comparable]() *Adjacency[K] {
	return &Adjacency[K]{succ: make(map[K][]K)}
}

func (a *Adjacency[K]) AddNode(n K) {
	if _, ok := a.succ[n]; ok {
		return
	}
	a.succ[n] = []K{}
	a.order.add(n)
}

func (a *Adjacency[K]) AddEdge(from, to K) {
	a.AddNode(from)
	a.AddNode(to)
	a.succ[from] = append(a.succ[from], to)
}

func (a *Adjacency[K]) Snapshot() map[K][]K {
	out := make(map[K][]K, len(a.succ))
	for n, s := range a.succ {
		c := make([]K, len(s))
		copy(c, s)
		out[n] = c
	}
	return out
}

func (a *Adjacency[K]) Nodes() []K {
	return a.order.list()
}

func (a *Adjacency[K]) Successors(n K) ([]K, bool) {
	s, ok := a.succ[n]
	if !ok {
		return nil, false
	}
	c := make([]K, len(s))
	copy(c, s)
	return c, true
}

func (a *Adjacency[K]) Len() int {
	return len(a.succ)
}

func (a *Adjacency[K]) Reset() {
	a.succ = make(map[K][]K)
	a.order = order[K]{}
}
