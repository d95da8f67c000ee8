package document

import (
	"fmt"
	"strings"
)

// Kind identifies the type of a document node
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Node is a single value in a document tree. Objects keep their keys in
// insertion order.
type Node struct {
	Kind Kind

	// Str holds the value of a string node, or the verbatim literal of a
	// number node so that "1.50" stays "1.50" on output.
	Str  string
	Bool bool

	keys   []string
	fields map[string]*Node
	items  []*Node
}

// NewObject creates an empty object node
func NewObject() *Node {
	return &Node{Kind: KindObject, fields: make(map[string]*Node)}
}

// NewArray creates an array node holding items
func NewArray(items ...*Node) *Node {
	return &Node{Kind: KindArray, items: items}
}

// String creates a string node
func String(s string) *Node {
	return &Node{Kind: KindString, Str: s}
}

// Number creates a number node from its literal representation
func Number(literal string) *Node {
	return &Node{Kind: KindNumber, Str: literal}
}

// Bool creates a boolean node
func Bool(b bool) *Node {
	return &Node{Kind: KindBool, Bool: b}
}

// Null creates a null node
func Null() *Node {
	return &Node{Kind: KindNull}
}

// Set stores value under key. A new key is appended to the key order, an
// existing key keeps its position.
func (n *Node) Set(key string, value *Node) {
	if n.Kind != KindObject {
		panic(fmt.Sprintf("document: Set on %s node", n.Kind))
	}
	if n.fields == nil {
		n.fields = make(map[string]*Node)
	}
	if _, ok := n.fields[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = value
}

// Get returns the child stored under key
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind != KindObject {
		return nil, false
	}
	v, ok := n.fields[key]
	return v, ok
}

// Keys returns the object keys in insertion order
func (n *Node) Keys() []string {
	out := make([]string, len(n.keys))
	copy(out, n.keys)
	return out
}

// Append adds an element to an array node
func (n *Node) Append(value *Node) {
	if n.Kind != KindArray {
		panic(fmt.Sprintf("document: Append on %s node", n.Kind))
	}
	n.items = append(n.items, value)
}

// Items returns the elements of an array node
func (n *Node) Items() []*Node {
	return n.items
}

// Len returns the number of keys or elements of a container node
func (n *Node) Len() int {
	switch n.Kind {
	case KindObject:
		return len(n.keys)
	case KindArray:
		return len(n.items)
	default:
		return 0
	}
}

// Clone returns a deep copy of n
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Kind: n.Kind, Str: n.Str, Bool: n.Bool}
	switch n.Kind {
	case KindObject:
		c.keys = make([]string, len(n.keys))
		copy(c.keys, n.keys)
		c.fields = make(map[string]*Node, len(n.fields))
		for k, v := range n.fields {
			c.fields[k] = v.Clone()
		}
	case KindArray:
		c.items = make([]*Node, len(n.items))
		for i, v := range n.items {
			c.items[i] = v.Clone()
		}
	}
	return c
}

// Equal reports whether two trees have the same shape, key order and values
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindString, KindNumber:
		return a.Str == b.Str
	case KindBool:
		return a.Bool == b.Bool
	case KindNull:
		return true
	case KindObject:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for i, k := range a.keys {
			if b.keys[i] != k || !Equal(a.fields[k], b.fields[k]) {
				return false
			}
		}
		return true
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// SameShape reports whether two trees have identical keys, key order,
// nesting and non-string values. String leaves may differ.
func SameShape(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindString:
		return true
	case KindObject:
		if len(a.keys) != len(b.keys) {
			return false
		}
		for i, k := range a.keys {
			if b.keys[i] != k || !SameShape(a.fields[k], b.fields[k]) {
				return false
			}
		}
		return true
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !SameShape(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	}
	return Equal(a, b)
}

// Path addresses a node by the keys (or array indices) leading to it from
// the root.
type Path []string

// String joins the path with dots, for reports and log lines
func (p Path) String() string {
	return strings.Join(p, ".")
}

// Key returns an unambiguous map key for the path. Keys may contain dots,
// so a control character separates the segments.
func (p Path) Key() string {
	return strings.Join(p, "\x1f")
}

// child returns a copy of p extended by seg
func (p Path) child(seg string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}
