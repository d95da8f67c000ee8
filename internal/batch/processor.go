package batch

import (
	"fmt"
	"os"
	"strings"
)

// Entry is one input document listed in a batch file
type Entry struct {
	Input string
	// OutputDir overrides the configured output directory when set
	OutputDir string
	// Line is the 1-based line number in the batch file
	Line int
}

// ReadBatchFile reads input documents from a file.
// Supported line formats:
//   - "locales/zh.json" (written to the configured output directory)
//   - "app/zh.json = app/locales" (written to app/locales)
//
// Blank lines and lines starting with '#' are ignored.
func ReadBatchFile(filename string) ([]Entry, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var entries []Entry
	for i, line := range splitLines(string(content)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry := Entry{Input: line, Line: i + 1}
		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			entry.Input = strings.TrimSpace(parts[0])
			entry.OutputDir = strings.TrimSpace(parts[1])
		}

		if entry.Input == "" {
			return nil, fmt.Errorf("%s:%d: missing input document", filename, i+1)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// splitLines splits a string by newlines, dropping carriage returns
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
