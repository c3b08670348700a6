package livegraph

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeSub records events. It fails sends once failing is set, and blocks
// each send until ctx is done while stuck is set.
type fakeSub struct {
	conn *int // identity

	mu      sync.Mutex
	events  []Event
	failing bool
	stuck   bool
	closed  int
}

func newFakeSub() *fakeSub {
	return &fakeSub{conn: new(int)}
}

func (f *fakeSub) Identity() any { return f.conn }

func (f *fakeSub) Send(ctx context.Context, e Event) error {
	f.mu.Lock()
	failing, stuck := f.failing, f.stuck
	f.mu.Unlock()
	if failing {
		return errors.New("connection closed")
	}
	if stuck {
		<-ctx.Done()
		return ctx.Err()
	}
	f.mu.Lock()
	f.events = append(f.events, e)
	f.mu.Unlock()
	return nil
}

func (f *fakeSub) Close() error {
	f.mu.Lock()
	f.closed++
	f.mu.Unlock()
	return nil
}

func (f *fakeSub) fail() {
	f.mu.Lock()
	f.failing = true
	f.mu.Unlock()
}

func (f *fakeSub) received() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeSub) kinds() []EventKind {
	kinds := []EventKind{}
	for _, e := range f.received() {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func TestRegisterIdempotent(t *testing.T) {
	bus := NewMessageBus(time.Second)
	a := newFakeSub()
	bus.Register(a)
	// a second handle on the same connection
	bus.Register(&fakeSub{conn: a.conn})
	if bus.Len() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", bus.Len())
	}
}

func TestUnregisterIdempotent(t *testing.T) {
	bus := NewMessageBus(time.Second)
	a := newFakeSub()
	bus.Unregister(a) // never registered
	bus.Register(a)
	bus.Unregister(a)
	bus.Unregister(a)
	if bus.Len() != 0 {
		t.Fatalf("expected empty bus, got %d", bus.Len())
	}
	if a.closed != 1 {
		t.Fatalf("expected subscriber closed once, got %d", a.closed)
	}
}

func TestSnapshotIsolated(t *testing.T) {
	bus := NewMessageBus(time.Second)
	a, b := newFakeSub(), newFakeSub()
	bus.Register(a)
	snap := bus.Snapshot()
	bus.Register(b)
	bus.Unregister(a)
	if len(snap) != 1 || snap[0] != Subscriber(a) {
		t.Fatalf("snapshot changed after registry mutation: %v", snap)
	}
}

func TestBroadcastPrunesFailed(t *testing.T) {
	bus := NewMessageBus(time.Second)
	a, b, c := newFakeSub(), newFakeSub(), newFakeSub()
	bus.Register(a)
	bus.Register(b)
	bus.Register(c)
	b.fail()

	bus.Broadcast(context.Background(), NodeAddedEvent(StringNode("X")))

	if len(a.received()) != 1 || len(c.received()) != 1 {
		t.Fatalf("healthy subscribers missed the event: a=%v c=%v", a.received(), c.received())
	}
	if bus.Len() != 2 {
		t.Fatalf("failed subscriber still registered, len=%d", bus.Len())
	}
	for _, s := range bus.Snapshot() {
		if s.Identity() == b.Identity() {
			t.Fatalf("failed subscriber still in registry")
		}
	}

	// it never receives anything again
	b.mu.Lock()
	b.failing = false
	b.mu.Unlock()
	bus.Broadcast(context.Background(), GraphResetEvent())
	if len(b.received()) != 0 {
		t.Fatalf("pruned subscriber received %v", b.received())
	}
}

func TestBroadcastStuckSubscriber(t *testing.T) {
	bus := NewMessageBus(50 * time.Millisecond)
	a, stuck := newFakeSub(), newFakeSub()
	stuck.stuck = true
	bus.Register(a)
	bus.Register(stuck)

	done := make(chan struct{})
	go func() {
		bus.Broadcast(context.Background(), NodeAddedEvent(StringNode("X")))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Broadcast blocked on a stuck subscriber")
	}
	if len(a.received()) != 1 {
		t.Fatalf("healthy subscriber missed the event")
	}
	if bus.Len() != 1 {
		t.Fatalf("stuck subscriber was not pruned")
	}
}

func TestBroadcastIgnoresCallerCancel(t *testing.T) {
	bus := NewMessageBus(time.Second)
	a := newFakeSub()
	bus.Register(a)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Broadcast(ctx, GraphResetEvent())
	if len(a.received()) != 1 || bus.Len() != 1 {
		t.Fatalf("cancelled caller context dropped a healthy subscriber")
	}
}

type panicSub struct{ fakeSub }

func (p *panicSub) Send(ctx context.Context, e Event) error { panic("boom") }

func TestBroadcastContainsPanic(t *testing.T) {
	bus := NewMessageBus(time.Second)
	a := newFakeSub()
	p := &panicSub{fakeSub{conn: new(int)}}
	bus.Register(a)
	bus.Register(p)
	bus.Broadcast(context.Background(), GraphResetEvent())
	if len(a.received()) != 1 || bus.Len() != 1 {
		t.Fatalf("panicking subscriber was not contained: len=%d", bus.Len())
	}
}

func TestConcurrentRegistry(t *testing.T) {
	bus := NewMessageBus(time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s := newFakeSub()
			bus.Register(s)
			bus.Unregister(s)
			bus.Unregister(s)
		}()
		go func() {
			defer wg.Done()
			bus.Broadcast(context.Background(), GraphResetEvent())
		}()
	}
	wg.Wait()
	if bus.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", bus.Len())
	}
}
