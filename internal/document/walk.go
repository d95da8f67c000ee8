package document

import (
	"strconv"
	"strings"
)

// Leaf is a string value addressed by its path from the root
type Leaf struct {
	Path Path
	Text string
}

// Translatable reports whether the leaf carries text worth sending to a
// provider. Empty and whitespace-only strings are copied through as-is.
func (l Leaf) Translatable() bool {
	return strings.TrimSpace(l.Text) != ""
}

// Walk returns every string leaf of the tree in depth-first, key insertion
// order. Numbers, booleans and nulls are not returned; Assemble copies them
// from the source tree unchanged.
func Walk(root *Node) []Leaf {
	var leaves []Leaf
	walk(root, Path{}, &leaves)
	return leaves
}

func walk(n *Node, path Path, leaves *[]Leaf) {
	switch n.Kind {
	case KindString:
		*leaves = append(*leaves, Leaf{Path: path, Text: n.Str})
	case KindObject:
		for _, k := range n.keys {
			walk(n.fields[k], path.child(k), leaves)
		}
	case KindArray:
		for i, item := range n.items {
			walk(item, path.child(strconv.Itoa(i)), leaves)
		}
	}
}

// Stats counts the nodes of a tree by category
type Stats struct {
	Strings      int
	Translatable int
	Scalars      int // numbers, booleans and nulls
	Containers   int
}

// Count walks the tree and returns its Stats
func Count(root *Node) Stats {
	var s Stats
	count(root, &s)
	return s
}

func count(n *Node, s *Stats) {
	switch n.Kind {
	case KindString:
		s.Strings++
		if strings.TrimSpace(n.Str) != "" {
			s.Translatable++
		}
	case KindObject:
		s.Containers++
		for _, k := range n.keys {
			count(n.fields[k], s)
		}
	case KindArray:
		s.Containers++
		for _, item := range n.items {
			count(item, s)
		}
	default:
		s.Scalars++
	}
}
