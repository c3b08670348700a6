// Package stream serves the live event stream over WebSockets.
//
// Each connection goes Connecting -> Active -> Closed. Once the handshake
// completes the connection is registered with the Service and sent a
// graph_init; from then on it only receives broadcasts. The handler keeps
// reading purely to notice the peer going away (anything the peer sends is
// discarded), and on close or error it unregisters the connection and
// releases it.
package stream

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	lg "github.com/livegraph/livegraph/pkg"
)

// Registry is the part of lg.Service the handler uses.
type Registry interface {
	Connect(ctx context.Context, sub lg.Subscriber) error
	Disconnect(sub lg.Subscriber)
}

type Handler struct {
	registry Registry
	accept   *websocket.AcceptOptions
}

func NewHandler(registry Registry) *Handler {
	return &Handler{
		registry: registry,
		accept: &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		},
	}
}

var errClosed = errors.New("stream: connection closed")

// conn is a Subscriber backed by one websocket connection.
type conn struct {
	ws     *websocket.Conn
	remote string
	alive  atomic.Bool
}

func newConn(ws *websocket.Conn, remote string) *conn {
	c := &conn{ws: ws, remote: remote}
	c.alive.Store(true)
	return c
}

// Identity is the underlying connection, so two handles on one websocket
// are the same subscriber.
func (c *conn) Identity() any { return c.ws }

func (c *conn) Send(ctx context.Context, e lg.Event) error {
	if !c.alive.Load() {
		return errClosed
	}
	return wsjson.Write(ctx, c.ws, e)
}

// Close drops the connection without a close handshake: it is called from
// the broadcast path, which must not wait on a dead peer.
func (c *conn) Close() error {
	if !c.alive.Swap(false) {
		return nil
	}
	return c.ws.CloseNow()
}

func (c *conn) String() string { return c.remote }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, h.accept)
	if err != nil {
		log.Printf("stream: websocket.Accept: %v", err)
		return
	}
	defer ws.CloseNow()

	c := newConn(ws, r.RemoteAddr)
	ctx := r.Context()
	if err := h.registry.Connect(ctx, c); err != nil {
		log.Printf("stream: %s: graph_init failed: %v", c, err)
		h.registry.Disconnect(c)
		return
	}
	log.Printf("stream: %s connected", c)

	err = h.idle(ctx, c)
	h.registry.Disconnect(c)
	c.Close()
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		log.Printf("stream: %s disconnected", c)
	default:
		log.Printf("stream: %s dropped: %v", c, err)
	}
}

// idle reads until the connection fails or is closed. The stream is
// outbound only, so whatever arrives is thrown away.
func (h *Handler) idle(ctx context.Context, c *conn) error {
	for {
		_, _, err := c.ws.Read(ctx)
		if err != nil {
			return err
		}
	}
}
