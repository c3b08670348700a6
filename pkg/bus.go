package livegraph

/*
The bus fans graph events out to every live subscriber.

Subscribers are anything that can take an Event: websocket clients
connected through the stream handler, and the configured sinks in
receivers (rotating event logs, ZMQ publisher).

Delivery is best-effort and at-most-once. Each Broadcast sends to every
subscriber concurrently, bounded by a per-send timeout, and waits for all
of them; any subscriber whose send fails or times out is unregistered and
closed before Broadcast returns, and never sees another event. Failures
are not reported to the caller.
*/

import (
	"context"
	"log"
	"sync"
	"time"
)

// Subscriber is one destination for broadcast events.
type Subscriber interface {
	// Identity is the comparable identity of the underlying connection;
	// two handles with the same Identity are the same subscriber.
	Identity() any
	// Send delivers one event, honouring ctx's deadline.
	Send(ctx context.Context, e Event) error
	// Close releases the connection. It may be called more than once.
	Close() error
}

type MessageBus struct {
	mu sync.Mutex
	// Registered subscribers, by connection identity.
	receivers map[any]Subscriber
	// bound on a single Send
	timeout time.Duration
}

func NewMessageBus(sendTimeout time.Duration) *MessageBus {
	return &MessageBus{
		receivers: make(map[any]Subscriber),
		timeout:   sendTimeout,
	}
}

// Register adds sub. Registering a connection that is already registered
// is a no-op.
func (b *MessageBus) Register(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := sub.Identity()
	if _, ok := b.receivers[id]; ok {
		return
	}
	b.receivers[id] = sub
}

// Unregister removes and closes sub. Unregistering a subscriber that is not
// registered (or was already removed) does nothing.
func (b *MessageBus) Unregister(sub Subscriber) {
	b.mu.Lock()
	id := sub.Identity()
	cur, ok := b.receivers[id]
	if ok {
		delete(b.receivers, id)
	}
	b.mu.Unlock()
	if ok {
		cur.Close()
	}
}

// Snapshot returns the subscribers registered right now. Later Register and
// Unregister calls do not affect the returned slice.
func (b *MessageBus) Snapshot() []Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := make([]Subscriber, 0, len(b.receivers))
	for _, s := range b.receivers {
		subs = append(subs, s)
	}
	return subs
}

func (b *MessageBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.receivers)
}

// Broadcast delivers e to every registered subscriber.
func (b *MessageBus) Broadcast(ctx context.Context, e Event) {
	subs := b.Snapshot()
	if len(subs) == 0 {
		return
	}
	var wg sync.WaitGroup
	wg.Add(len(subs))
	for _, sub := range subs {
		go func(sub Subscriber) {
			defer wg.Done()
			if err := b.Deliver(ctx, sub, e); err != nil {
				log.Printf("MessageBus: dropping subscriber %v: %v\n", sub.Identity(), err)
			}
		}(sub)
	}
	wg.Wait()
}

// Deliver sends e to a single subscriber, unregistering it on failure.
func (b *MessageBus) Deliver(ctx context.Context, sub Subscriber, e Event) (err error) {
	defer func() {
		// a misbehaving subscriber must not take the fan-out down with it
		if r := recover(); r != nil {
			err = NewErr(UnknownError, "subscriber panic: %v", r)
		}
		if err != nil {
			b.Unregister(sub)
		}
	}()
	// a cancelled caller (eg. a finished HTTP request) must not look like
	// a failed subscriber, so only the send timeout bounds delivery.
	sendCtx := context.WithoutCancel(ctx)
	if b.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(sendCtx, b.timeout)
		defer cancel()
	}
	return sub.Send(sendCtx, e)
}
