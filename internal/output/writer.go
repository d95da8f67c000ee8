package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/polyglot/internal"
	"codeberg.org/snonux/polyglot/internal/document"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// ErrorReportFile is the name of the error report inside the output directory
const ErrorReportFile = "errors.json"

// FileWriter writes one file per language to {Dir}/{code}{ext}
type FileWriter struct {
	Dir    string
	Format document.Format
}

// NewFileWriter creates a writer for dir
func NewFileWriter(dir string, format document.Format) *FileWriter {
	return &FileWriter{Dir: dir, Format: format}
}

// Path returns the file a language code is written to
func (w *FileWriter) Path(code string) string {
	return filepath.Join(w.Dir, internal.SanitizeFilename(code)+w.Format.Ext())
}

// Write stores data for code and returns the file path. Failures are
// returned as *translation.IOError.
func (w *FileWriter) Write(code string, data []byte) (string, error) {
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", &translation.IOError{Op: "create output directory", Path: w.Dir, Err: err}
	}

	path := w.Path(code)
	if err := writeFileAtomic(path, data); err != nil {
		return "", &translation.IOError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// ErrorReport enumerates the failed leaves and languages of a run
type ErrorReport struct {
	RunID       string                    `json:"run_id"`
	GeneratedAt time.Time                 `json:"generated_at"`
	Languages   map[string]LanguageReport `json:"languages"`
}

// LanguageReport is the error report entry of one requested language
type LanguageReport struct {
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
	Canonical   string    `json:"canonical,omitempty"`
	FailedPaths []string  `json:"failed_paths"`
	Error       string    `json:"error,omitempty"`
}

// WriteErrorReport writes report to {dir}/errors.json
func WriteErrorReport(dir string, report *ErrorReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &translation.IOError{Op: "create output directory", Path: dir, Err: err}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode error report: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, ErrorReportFile)
	if err := writeFileAtomic(path, data); err != nil {
		return "", &translation.IOError{Op: "write", Path: path, Err: err}
	}
	return path, nil
}

// RemoveErrorReport deletes a stale report left by an earlier run
func RemoveErrorReport(dir string) error {
	err := os.Remove(filepath.Join(dir, ErrorReportFile))
	if err != nil && !os.IsNotExist(err) {
		return &translation.IOError{Op: "remove", Path: filepath.Join(dir, ErrorReportFile), Err: err}
	}
	return nil
}

// writeFileAtomic writes through a temporary file so readers never see a
// partially written document
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
