package livegraph

import (
	"encoding/json"
	"fmt"
)

// EventKind is the `event` discriminator on the wire.
type EventKind string

const (
	NodeAdded  EventKind = "node_added"
	EdgeAdded  EventKind = "edge_added"
	GraphReset EventKind = "graph_reset"
	GraphInit  EventKind = "graph_init"
)

// slice of all event kinds for config lookups
var EventKinds = []EventKind{NodeAdded, EdgeAdded, GraphReset, GraphInit}

// ParseEventKinds maps config names to kinds. "ALL" (or no names at all)
// selects every kind.
func ParseEventKinds(names []string) ([]EventKind, error) {
	if len(names) == 0 {
		return EventKinds, nil
	}
	kinds := []EventKind{}
	for _, name := range names {
		if name == "ALL" {
			return EventKinds, nil
		}
		match := false
		for _, k := range EventKinds {
			if string(k) == name {
				match = true
				kinds = append(kinds, k)
			}
		}
		if !match {
			return nil, fmt.Errorf("unknown event kind: %q", name)
		}
	}
	return kinds, nil
}

// Event is one state change. Only the fields relevant to Kind are set.
type Event struct {
	Kind  EventKind
	Seq   uint64
	Node  NodeID
	From  NodeID
	To    NodeID
	Graph map[NodeID][]NodeID
}

func NodeAddedEvent(n NodeID) Event {
	return Event{Kind: NodeAdded, Node: n}
}

func EdgeAddedEvent(from, to NodeID) Event {
	return Event{Kind: EdgeAdded, From: from, To: to}
}

func GraphResetEvent() Event {
	return Event{Kind: GraphReset}
}

func GraphInitEvent(g map[NodeID][]NodeID) Event {
	return Event{Kind: GraphInit, Graph: g}
}

type nodeAddedWire struct {
	Event EventKind `json:"event"`
	Seq   uint64    `json:"seq"`
	Node  NodeID    `json:"node"`
}

type edgeAddedWire struct {
	Event EventKind `json:"event"`
	Seq   uint64    `json:"seq"`
	From  NodeID    `json:"from"`
	To    NodeID    `json:"to"`
}

type graphResetWire struct {
	Event EventKind `json:"event"`
	Seq   uint64    `json:"seq"`
}

type graphInitWire struct {
	Event EventKind           `json:"event"`
	Seq   uint64              `json:"seq"`
	Graph map[NodeID][]NodeID `json:"graph"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Kind {
	case NodeAdded:
		return json.Marshal(nodeAddedWire{e.Kind, e.Seq, e.Node})
	case EdgeAdded:
		return json.Marshal(edgeAddedWire{e.Kind, e.Seq, e.From, e.To})
	case GraphReset:
		return json.Marshal(graphResetWire{e.Kind, e.Seq})
	case GraphInit:
		g := e.Graph
		if g == nil {
			g = map[NodeID][]NodeID{} // encoded as '{}' in JSON
		}
		return json.Marshal(graphInitWire{e.Kind, e.Seq, g})
	}
	return nil, fmt.Errorf("cannot marshal event of kind %q", e.Kind)
}
