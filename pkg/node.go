package livegraph

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

type nodeKind uint8

const (
	kindNone nodeKind = iota
	kindString
	kindNumber
	kindBool
)

// NodeID identifies a node. Two NodeIDs refer to the same node when they are
// ==; the string "1" and the number 1 are different nodes. The zero NodeID
// is not a valid identity.
type NodeID struct {
	kind nodeKind
	text string
}

// StringNode returns the NodeID for the string s.
func StringNode(s string) NodeID {
	return NodeID{kind: kindString, text: s}
}

// IntNode returns the NodeID for the integer n.
func IntNode(n int64) NodeID {
	return NodeID{kind: kindNumber, text: strconv.FormatInt(n, 10)}
}

// ParseNodeID decodes a node identity from a JSON value. Strings, numbers
// and booleans are accepted; anything else (arrays, objects, null) cannot
// identify a node and yields an InvalidNode error.
func ParseNodeID(raw json.RawMessage) (NodeID, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return NodeID{}, NewErr(InvalidNode, "node identity is missing")
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return NodeID{}, NewErr(InvalidNode, "bad string node identity: %v", err)
		}
		return StringNode(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return NodeID{}, NewErr(InvalidNode, "bad node identity %s", raw)
		}
		return NodeID{kind: kindBool, text: strconv.FormatBool(b)}, nil
	case '[', '{':
		return NodeID{}, NewErr(InvalidNode, "unhashable node identity: %s", raw)
	case 'n':
		return NodeID{}, NewErr(InvalidNode, "node identity cannot be null")
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return NodeID{}, NewErr(InvalidNode, "bad node identity %s", raw)
	}
	text, err := canonicalNumber(num)
	if err != nil {
		return NodeID{}, NewErr(InvalidNode, "bad numeric node identity %s: %v", raw, err)
	}
	return NodeID{kind: kindNumber, text: text}, nil
}

// canonicalNumber maps numerically equal JSON numbers (1, 1.0, 1e0) to a
// single text form.
func canonicalNumber(num json.Number) (string, error) {
	if i, err := num.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	f, err := num.Float64()
	if err != nil {
		return "", err
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", strconv.ErrRange
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10), nil
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

func (n NodeID) Valid() bool {
	return n.kind != kindNone
}

// String is the wire key form, used where only strings are representable
// (graph_init keys).
func (n NodeID) String() string {
	return n.text
}

func (n NodeID) MarshalJSON() ([]byte, error) {
	switch n.kind {
	case kindString:
		return json.Marshal(n.text)
	case kindNumber, kindBool:
		return []byte(n.text), nil
	}
	return []byte("null"), nil
}

func (n *NodeID) UnmarshalJSON(b []byte) error {
	id, err := ParseNodeID(b)
	if err != nil {
		return err
	}
	*n = id
	return nil
}

// MarshalText lets NodeID be used as a JSON object key.
func (n NodeID) MarshalText() ([]byte, error) {
	return []byte(n.text), nil
}
