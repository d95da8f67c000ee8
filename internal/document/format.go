package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is a document serialization format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Unknown
// extensions are treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Ext returns the file extension used for the format, with the dot
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Parse decodes data in the given format
func Parse(data []byte, f Format) (*Node, error) {
	switch f {
	case FormatYAML:
		return ParseYAML(data)
	case FormatJSON, "":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("unknown document format: %s", f)
	}
}

// Marshal encodes the tree in the given format
func Marshal(n *Node, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		return MarshalYAML(n)
	case FormatJSON, "":
		return MarshalJSON(n)
	default:
		return nil, fmt.Errorf("unknown document format: %s", f)
	}
}

// ParseFile reads and parses a document, choosing the format from the
// file extension.
func ParseFile(path string) (*Node, Format, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	f := FormatFromPath(path)
	n, err := Parse(data, f)
	if err != nil {
		return nil, f, fmt.Errorf("%s: %w", path, err)
	}
	return n, f, nil
}
