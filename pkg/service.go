package livegraph

import (
	"context"
	"sync"

	"github.com/livegraph/livegraph/pkg/graph"
)

// Service owns the graph and its subscribers. Every mutation goes through
// AddNode, AddEdge or Reset, which apply the change to the store and then
// broadcast the matching event.
//
// One lock serializes mutation+broadcast and connect+graph_init, so each
// subscriber sees graph_init first and then every later event in the order
// it was produced, and state read after an event is at least that new.
type Service struct {
	mu    sync.Mutex
	store graph.Store[NodeID]
	bus   *MessageBus
	seq   uint64 // seq of the last event produced
}

func NewService(store graph.Store[NodeID], bus *MessageBus) *Service {
	return &Service{store: store, bus: bus}
}

// NewServiceFromConfig builds a Service with the configured store variant.
func NewServiceFromConfig(conf Config) *Service {
	return NewService(
		graph.New[NodeID](conf.Graph.DedupeEdges),
		NewMessageBus(conf.SendTimeout()),
	)
}

func (s *Service) Bus() *MessageBus {
	return s.bus
}

func (s *Service) AddNode(ctx context.Context, n NodeID) error {
	if !n.Valid() {
		return NewErr(InvalidNode, "add node: invalid node identity")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.AddNode(n)
	s.publish(ctx, NodeAddedEvent(n))
	return nil
}

// AddEdge adds from -> to. Endpoints created implicitly are not announced
// separately; subscribers only receive edge_added.
func (s *Service) AddEdge(ctx context.Context, from, to NodeID) error {
	if !from.Valid() || !to.Valid() {
		return NewErr(InvalidNode, "add edge: invalid node identity")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.AddEdge(from, to)
	s.publish(ctx, EdgeAddedEvent(from, to))
	return nil
}

func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.Reset()
	s.publish(ctx, GraphResetEvent())
	return nil
}

// must hold s.mu
func (s *Service) publish(ctx context.Context, e Event) {
	s.seq++
	e.Seq = s.seq
	s.bus.Broadcast(ctx, e)
}

// Graph returns a copy of the current adjacency mapping.
func (s *Service) Graph() map[NodeID][]NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// Nodes returns the current nodes in insertion order.
func (s *Service) Nodes() []NodeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Nodes()
}

func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Nodes:       s.store.Len(),
		Subscribers: s.bus.Len(),
		Seq:         s.seq,
	}
}

type Stats struct {
	Nodes       int    `json:"nodes"`
	Subscribers int    `json:"subscribers"`
	Seq         uint64 `json:"seq"`
}

// Subscribe registers a sink that receives every future event, without an
// initial graph_init.
func (s *Service) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bus.Register(sub)
}

// Connect registers sub and sends it a graph_init holding the current
// graph. No broadcast can slip in between the two. If graph_init cannot be
// delivered, sub is unregistered and the error returned.
func (s *Service) Connect(ctx context.Context, sub Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bus.Register(sub)
	first := GraphInitEvent(s.store.Snapshot())
	first.Seq = s.seq
	return s.bus.Deliver(ctx, sub, first)
}

// Disconnect unregisters sub. It is safe to call after the bus has already
// dropped it.
func (s *Service) Disconnect(sub Subscriber) {
	s.bus.Unregister(sub)
}
