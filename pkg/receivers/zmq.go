package receivers

import (
	"context"
	"encoding/json"
	"sync"

	lg "github.com/livegraph/livegraph/pkg"
	"github.com/pebbe/zmq4"
)

// ZMQPublisher publishes every event on a ZeroMQ PUB socket as a two frame
// message: the event kind (usable as a SUB topic) then the event JSON.
type ZMQPublisher struct {
	// zmq sockets are not safe for concurrent use
	mu   sync.Mutex
	sock *zmq4.Socket
}

// interface guard ensures ZMQPublisher implements lg.Subscriber
var _ lg.Subscriber = &ZMQPublisher{}

func NewZMQPublisher(endpoint string) (*ZMQPublisher, error) {
	sock, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, err
	}
	// don't hold the process open for undelivered messages
	if err := sock.SetLinger(0); err != nil {
		sock.Close()
		return nil, err
	}
	if err := sock.Bind(endpoint); err != nil {
		sock.Close()
		return nil, err
	}
	return &ZMQPublisher{sock: sock}, nil
}

func (p *ZMQPublisher) Identity() any {
	return p
}

// Implements lg.Subscriber
func (p *ZMQPublisher) Send(ctx context.Context, e lg.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sock == nil {
		return errPublisherClosed
	}
	// PUB never blocks: slow subscribers lose messages at the high water mark
	_, err = p.sock.SendMessage(string(e.Kind), b)
	return err
}

func (p *ZMQPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sock == nil {
		return nil
	}
	err := p.sock.Close()
	p.sock = nil
	return err
}
