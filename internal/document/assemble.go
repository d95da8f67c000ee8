package document

import "strconv"

// FailedPrefix starts every leaf whose translation failed
const FailedPrefix = "[untranslated] "

// Outcome is the translation result of one leaf
type Outcome struct {
	Text   string
	Failed bool
}

// MarkerFunc builds the value written in place of a failed leaf
type MarkerFunc func(original string) string

// DefaultMarker keeps the original text behind FailedPrefix so the failed
// leaf stays visible in the output document.
func DefaultMarker(original string) string {
	return FailedPrefix + original
}

// Assemble builds a translated copy of src. outcomes is keyed by Path.Key().
// String leaves without an outcome are copied unchanged, failed leaves are
// replaced by marker(original). The result always has the key set, key
// order and nesting of src.
func Assemble(src *Node, outcomes map[string]Outcome, marker MarkerFunc) *Node {
	if marker == nil {
		marker = DefaultMarker
	}
	return assemble(src, Path{}, outcomes, marker)
}

func assemble(n *Node, path Path, outcomes map[string]Outcome, marker MarkerFunc) *Node {
	switch n.Kind {
	case KindString:
		out, ok := outcomes[path.Key()]
		if !ok {
			return String(n.Str)
		}
		if out.Failed {
			return String(marker(n.Str))
		}
		return String(out.Text)
	case KindObject:
		obj := NewObject()
		for _, k := range n.keys {
			obj.Set(k, assemble(n.fields[k], path.child(k), outcomes, marker))
		}
		return obj
	case KindArray:
		arr := &Node{Kind: KindArray, items: make([]*Node, 0, len(n.items))}
		for i, item := range n.items {
			arr.items = append(arr.items, assemble(item, path.child(strconv.Itoa(i)), outcomes, marker))
		}
		return arr
	default:
		return n.Clone()
	}
}
