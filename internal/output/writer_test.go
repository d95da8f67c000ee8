package output

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/snonux/polyglot/internal/document"
	"codeberg.org/snonux/polyglot/internal/testutil"
	"codeberg.org/snonux/polyglot/internal/translation"
)

func TestFileWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "locales")

	tests := []struct {
		name   string
		format document.Format
		code   string
		want   string
	}{
		{"json", document.FormatJSON, "kr", "kr.json"},
		{"yaml", document.FormatYAML, "zh-TW", "zh-TW.yaml"},
		{"unsafe code", document.FormatJSON, "../x", "___x.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewFileWriter(dir, tt.format)
			path, err := w.Write(tt.code, []byte("content\n"))
			if err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if path != filepath.Join(dir, tt.want) {
				t.Errorf("path = %q, want %q", path, filepath.Join(dir, tt.want))
			}
			testutil.AssertFileContent(t, path, []byte("content\n"))
		})
	}

	// No temporary files are left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("expected 3 files, got %d", len(entries))
	}
}

func TestFileWriter_WriteFailure(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	testutil.CreateTestFile(t, blocker, []byte("x"))

	// The output directory cannot be created below a regular file
	w := NewFileWriter(filepath.Join(blocker, "locales"), document.FormatJSON)
	_, err := w.Write("en", []byte("{}\n"))

	var ioErr *translation.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if ioErr.Op != "create output directory" {
		t.Errorf("Op = %q", ioErr.Op)
	}
}

func TestWriteErrorReport(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	report := &ErrorReport{
		RunID:       "run-1",
		GeneratedAt: ts,
		Languages: map[string]LanguageReport{
			"ja": {Timestamp: ts, Status: "failed", Canonical: "ja", FailedPaths: []string{"a", "b.c"}, Error: "boom"},
			"xx": {Timestamp: ts, Status: "failed", FailedPaths: []string{}, Error: `unsupported language "xx"`},
		},
	}

	path, err := WriteErrorReport(dir, report)
	if err != nil {
		t.Fatalf("WriteErrorReport failed: %v", err)
	}
	if path != filepath.Join(dir, ErrorReportFile) {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var decoded ErrorReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.RunID != "run-1" || len(decoded.Languages) != 2 {
		t.Errorf("decoded report = %+v", decoded)
	}
	if got := decoded.Languages["ja"].FailedPaths; len(got) != 2 || got[1] != "b.c" {
		t.Errorf("ja failed paths = %v", got)
	}
	testutil.AssertFileContains(t, path, `"failed_paths": []`)

	if err := RemoveErrorReport(dir); err != nil {
		t.Fatalf("RemoveErrorReport failed: %v", err)
	}
	testutil.AssertFileNotExists(t, path)

	// Removing a missing report is not an error
	if err := RemoveErrorReport(dir); err != nil {
		t.Errorf("RemoveErrorReport on missing file: %v", err)
	}
}
