package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	lg "github.com/livegraph/livegraph/pkg"
)

// WireEvent is an event as a client decodes it. Node identities come back
// as plain JSON values (string, float64 or bool).
type WireEvent struct {
	Event lg.EventKind     `json:"event"`
	Seq   uint64           `json:"seq"`
	Node  any              `json:"node,omitempty"`
	From  any              `json:"from,omitempty"`
	To    any              `json:"to,omitempty"`
	Graph map[string][]any `json:"graph,omitempty"`
}

func (e WireEvent) String() string {
	switch e.Event {
	case lg.NodeAdded:
		return fmt.Sprintf("#%d node_added %v", e.Seq, e.Node)
	case lg.EdgeAdded:
		return fmt.Sprintf("#%d edge_added %v -> %v", e.Seq, e.From, e.To)
	case lg.GraphInit:
		return fmt.Sprintf("#%d graph_init (%d nodes)", e.Seq, len(e.Graph))
	}
	return fmt.Sprintf("#%d %s", e.Seq, e.Event)
}

// Client is a subscriber's end of the stream.
type Client struct {
	ws *websocket.Conn
}

// Dial connects to a stream endpoint, eg. ws://localhost:8000/ws.
func Dial(ctx context.Context, url string) (*Client, error) {
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Client{ws: ws}, nil
}

// Next blocks for the next event.
func (c *Client) Next(ctx context.Context) (WireEvent, error) {
	var e WireEvent
	err := wsjson.Read(ctx, c.ws, &e)
	return e, err
}

// Watch calls fn for each event until ctx is done, the server goes away or
// fn returns an error. A normal close by the server returns nil.
func (c *Client) Watch(ctx context.Context, fn func(WireEvent) error) error {
	for {
		e, err := c.Next(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}

func (c *Client) Close() error {
	return c.ws.Close(websocket.StatusNormalClosure, "")
}

// CloseNow drops the connection without a handshake.
func (c *Client) CloseNow() error {
	return c.ws.CloseNow()
}
