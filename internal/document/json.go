package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ParseJSON parses a JSON document. The root must be an object; key order
// is taken from the input.
func ParseJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if root.Kind != KindObject {
		return nil, fmt.Errorf("parsing JSON: document root must be an object, got %s", root.Kind)
	}

	// Anything after the root value is an error, except whitespace.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parsing JSON: unexpected data after document root")
	}
	return root, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeToken(dec, t)
}

func decodeToken(dec *json.Decoder, t json.Token) (*Node, error) {
	switch v := t.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", v)
		}
	case string:
		return String(v), nil
	case json.Number:
		return Number(v.String()), nil
	case bool:
		return Bool(v), nil
	case nil:
		return Null(), nil
	default:
		return nil, fmt.Errorf("unexpected token %T", t)
	}
}

func decodeObject(dec *json.Decoder) (*Node, error) {
	obj := NewObject()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %T", kt)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		obj.Set(key, val)
	}
	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (*Node, error) {
	arr := NewArray()
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		arr.Append(val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// MarshalJSON renders the document with two-space indentation, original key
// order and a trailing newline. HTML characters are not escaped.
func MarshalJSON(n *Node) ([]byte, error) {
	return MarshalJSONIndent(n, "  ")
}

// MarshalJSONIndent is MarshalJSON with a custom indent unit
func MarshalJSONIndent(n *Node, indent string) ([]byte, error) {
	var b bytes.Buffer
	if err := writeJSON(&b, n, indent, 0); err != nil {
		return nil, err
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func writeJSON(b *bytes.Buffer, n *Node, indent string, depth int) error {
	switch n.Kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		if n.Bool {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindNumber:
		b.WriteString(n.Str)
	case KindString:
		s, err := quoteJSON(n.Str)
		if err != nil {
			return err
		}
		b.WriteString(s)
	case KindObject:
		if len(n.keys) == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{\n")
		for i, k := range n.keys {
			b.WriteString(strings.Repeat(indent, depth+1))
			key, err := quoteJSON(k)
			if err != nil {
				return err
			}
			b.WriteString(key)
			b.WriteString(": ")
			if err := writeJSON(b, n.fields[k], indent, depth+1); err != nil {
				return err
			}
			if i < len(n.keys)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat(indent, depth))
		b.WriteByte('}')
	case KindArray:
		if len(n.items) == 0 {
			b.WriteString("[]")
			return nil
		}
		b.WriteString("[\n")
		for i, item := range n.items {
			b.WriteString(strings.Repeat(indent, depth+1))
			if err := writeJSON(b, item, indent, depth+1); err != nil {
				return err
			}
			if i < len(n.items)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat(indent, depth))
		b.WriteByte(']')
	default:
		return fmt.Errorf("cannot marshal %s node", n.Kind)
	}
	return nil
}

// quoteJSON encodes s as a JSON string without HTML escaping
func quoteJSON(s string) (string, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// RawJSON is a json.Marshaler that renders a document in its original key
// order, for embedding documents in larger JSON payloads.
type RawJSON struct {
	Node *Node
}

// MarshalJSON implements json.Marshaler
func (r RawJSON) MarshalJSON() ([]byte, error) {
	if r.Node == nil {
		return []byte("null"), nil
	}
	var b bytes.Buffer
	if err := writeJSON(&b, r.Node, "", 0); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
