package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/polyglot/internal"
	"codeberg.org/snonux/polyglot/internal/archive"
	"codeberg.org/snonux/polyglot/internal/batch"
	"codeberg.org/snonux/polyglot/internal/cli"
	"codeberg.org/snonux/polyglot/internal/document"
	"codeberg.org/snonux/polyglot/internal/history"
	"codeberg.org/snonux/polyglot/internal/language"
	"codeberg.org/snonux/polyglot/internal/output"
	"codeberg.org/snonux/polyglot/internal/provider"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// Runner handles the command-line workflow around the Processor: reading
// input documents, writing locale files, error reports and run history.
type Runner struct {
	flags   *cli.Flags
	proc    *Processor
	history *history.Store

	// outMu serializes log lines written from worker goroutines
	outMu  sync.Mutex
	stdout io.Writer
	stderr io.Writer

	// archived remembers output directories already moved aside in this
	// invocation, so a batch does not archive its own results
	archived map[string]bool
}

// BuildProvider creates the configured provider chain: the primary
// provider, optionally backed by a fallback
func BuildProvider(flags *cli.Flags, logf func(format string, args ...interface{})) (translation.Provider, error) {
	primary, err := newNamedProvider(flags.Provider, flags)
	if err != nil {
		return nil, err
	}

	if flags.Fallback == "" || strings.EqualFold(flags.Fallback, flags.Provider) {
		return primary, nil
	}
	secondary, err := newNamedProvider(flags.Fallback, flags)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}
	withFallback := provider.NewProviderWithFallback(primary, secondary)
	withFallback.OnFallback = func(from, to string, err error) {
		logf("  %s failed, trying %s: %v", from, to, err)
	}
	return withFallback, nil
}

// breakerWrapper returns the WrapProvider hook that puts every language
// run behind its own circuit breakers (nil when breakers are off)
func breakerWrapper(flags *cli.Flags, logf func(format string, args ...interface{})) (func(translation.Provider) translation.Provider, error) {
	if flags.BreakerMaxFailures < 0 {
		return nil, fmt.Errorf("breaker failures must not be negative, got %d", flags.BreakerMaxFailures)
	}
	if flags.BreakerMaxFailures == 0 {
		return nil, nil
	}
	settings := provider.DefaultBreakerSettings()
	settings.MaxFailures = uint32(flags.BreakerMaxFailures)
	if flags.BreakerTimeout > 0 {
		settings.Timeout = flags.BreakerTimeout
	}
	settings.OnStateChange = func(lang string, from, to gobreaker.State) {
		logf("  circuit for %s: %s -> %s", lang, from, to)
	}
	return func(next translation.Provider) translation.Provider {
		return provider.NewBreakerProvider(next, settings)
	}, nil
}

func newNamedProvider(name string, flags *cli.Flags) (translation.Provider, error) {
	config := provider.DefaultProviderConfig()
	config.Provider = name
	config.APIKey = cli.APIKey(name)
	config.Model = flags.Model
	config.BaseURL = flags.BaseURL
	// The fallback talks to its own default endpoint and model
	if !strings.EqualFold(name, flags.Provider) {
		config.Model = ""
		config.BaseURL = ""
	}
	return provider.NewProvider(config)
}

// BuildOptions turns the resolved flags into processor options. logf
// receives circuit breaker state changes.
func BuildOptions(flags *cli.Flags, logf func(format string, args ...interface{})) (Options, error) {
	table, err := language.NewTable(flags.Aliases)
	if err != nil {
		return Options{}, fmt.Errorf("invalid translate.aliases: %w", err)
	}
	wrap, err := breakerWrapper(flags, logf)
	if err != nil {
		return Options{}, err
	}

	opts := DefaultOptions()
	opts.SourceLanguage = flags.Source
	// Model stays empty: the primary provider's config carries flags.Model
	opts.MaxWorkers = flags.MaxWorkers
	opts.BatchDelay = flags.BatchDelay
	opts.RequestsPerSecond = flags.RequestsPerSecond
	opts.Retry = translation.RetryPolicy{
		MaxRetries:     flags.MaxRetries,
		Delay:          flags.RetryDelay,
		Multiplier:     flags.RetryMultiplier,
		RequestTimeout: flags.RequestTimeout,
	}
	opts.Languages = table
	opts.WrapProvider = wrap
	return opts, nil
}

// NewFromFlags creates a Processor for the configured provider. Log lines
// go to w.
func NewFromFlags(flags *cli.Flags, w io.Writer) (*Processor, error) {
	logf := func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}
	prov, err := BuildProvider(flags, logf)
	if err != nil {
		return nil, err
	}
	opts, err := BuildOptions(flags, logf)
	if err != nil {
		return nil, err
	}
	opts.OnLog = logf
	return NewProcessor(prov, opts)
}

// NewRunner creates a runner for the configured provider
func NewRunner(flags *cli.Flags) (*Runner, error) {
	r := newRunner(flags, os.Stdout, os.Stderr)
	prov, err := BuildProvider(flags, r.logf)
	if err != nil {
		return nil, err
	}
	if err := r.init(prov); err != nil {
		return nil, err
	}
	return r, nil
}

func newRunner(flags *cli.Flags, stdout, stderr io.Writer) *Runner {
	return &Runner{
		flags:    flags,
		stdout:   stdout,
		stderr:   stderr,
		archived: make(map[string]bool),
	}
}

// init builds the processor around prov and opens the history store
func (r *Runner) init(prov translation.Provider) error {
	opts, err := BuildOptions(r.flags, r.logf)
	if err != nil {
		return err
	}
	opts.OnLog = r.logf
	opts.OnProgress = func(lang string, done, total int) {
		r.debugf("%s: %d/%d strings done", lang, done, total)
	}

	proc, err := NewProcessor(prov, opts)
	if err != nil {
		return err
	}
	r.proc = proc

	if r.flags.HistoryDB != "" {
		store, err := history.Open(r.flags.HistoryDB)
		if err != nil {
			// History is a convenience; translating still works without it
			fmt.Fprintf(r.stderr, "Warning: run history disabled: %v\n", err)
		} else {
			r.history = store
			r.debugf("Recording run history in %s", store.Path())
		}
	}
	return nil
}

// Close releases the history store
func (r *Runner) Close() error {
	if r.history == nil {
		return nil
	}
	return r.history.Close()
}

// ProcessSingle translates one input document into the configured output
// directory
func (r *Runner) ProcessSingle(ctx context.Context, input string) error {
	summary, err := r.ProcessFile(ctx, input, r.flags.OutputDir)
	if err != nil {
		return err
	}
	if r.flags.Strict && summary.HasFailures() {
		return fmt.Errorf("%d of %d language(s) not fully translated", len(summary.Languages)-summary.Count(StatusSucceeded), len(summary.Languages))
	}
	fmt.Fprintf(r.stdout, "\nDone! Translations saved to: %s\n", r.flags.OutputDir)
	return nil
}

// ProcessBatch processes every input document listed in the batch file.
// A failing document does not stop the others.
func (r *Runner) ProcessBatch(ctx context.Context) error {
	entries, err := batch.ReadBatchFile(r.flags.BatchFile)
	if err != nil {
		return err
	}

	// Track statistics
	processedCount := 0
	incompleteCount := 0
	errorCount := 0

	for i, entry := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		outputDir := entry.OutputDir
		if outputDir == "" {
			outputDir = r.flags.OutputDir
		}

		fmt.Fprintf(r.stdout, "\nProcessing %d/%d: %s\n", i+1, len(entries), entry.Input)

		summary, err := r.ProcessFile(ctx, entry.Input, outputDir)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			fmt.Fprintf(r.stderr, "Error processing '%s' (line %d): %v\n", entry.Input, entry.Line, err)
			errorCount++
			// Continue with next document
			continue
		}
		processedCount++
		if summary.HasFailures() {
			incompleteCount++
		}
	}

	// Print summary
	fmt.Fprintf(r.stdout, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(r.stdout, "Total documents: %d\n", len(entries))
	fmt.Fprintf(r.stdout, "Processed: %d\n", processedCount)
	if incompleteCount > 0 {
		fmt.Fprintf(r.stdout, "With untranslated strings: %d\n", incompleteCount)
	}
	if errorCount > 0 {
		fmt.Fprintf(r.stdout, "Errors: %d\n", errorCount)
	}
	fmt.Fprintf(r.stdout, "================================\n")

	if errorCount > 0 {
		return fmt.Errorf("%d of %d document(s) failed", errorCount, len(entries))
	}
	if r.flags.Strict && incompleteCount > 0 {
		return fmt.Errorf("%d of %d document(s) not fully translated", incompleteCount, len(entries))
	}
	return nil
}

// ProcessFile translates input into every configured language and writes
// the results to outputDir. Only fatal failures are returned: unreadable
// input, unwritable output or cancellation.
func (r *Runner) ProcessFile(ctx context.Context, input, outputDir string) (*Summary, error) {
	if len(r.flags.Languages) == 0 {
		return nil, fmt.Errorf("no target languages given (use --lang or translate.languages)")
	}

	doc, inputFormat, err := document.ParseFile(input)
	if err != nil {
		return nil, &translation.IOError{Op: "read input", Path: input, Err: err}
	}

	format := inputFormat
	if r.flags.Format != "" {
		format = document.Format(strings.ToLower(r.flags.Format))
		if format != document.FormatJSON && format != document.FormatYAML {
			return nil, fmt.Errorf("unknown output format %q (use json or yaml)", r.flags.Format)
		}
	}

	if err := r.archiveOnce(outputDir); err != nil {
		return nil, err
	}

	stats := document.Count(doc)
	r.debugf("%s: %d strings, %d translatable", input, stats.Strings, stats.Translatable)

	sink := output.NewFileWriter(outputDir, format)
	summary, err := r.proc.WithFormat(format).Translate(ctx, doc, r.flags.Languages, sink)
	if err != nil {
		return summary, err
	}

	if summary.HasFailures() {
		path, err := output.WriteErrorReport(outputDir, summary.ErrorReport())
		if err != nil {
			return summary, err
		}
		fmt.Fprintf(r.stdout, "Error report: %s\n", path)
	} else if err := output.RemoveErrorReport(outputDir); err != nil {
		return summary, err
	}

	r.record(input, summary)
	r.printSummary(input, summary)
	return summary, nil
}

func (r *Runner) archiveOnce(outputDir string) error {
	if !r.flags.Archive || r.archived[outputDir] {
		return nil
	}
	r.archived[outputDir] = true
	if !archive.Exists(outputDir) {
		return nil
	}
	path, err := archive.ArchiveOutput(outputDir)
	if err != nil {
		return fmt.Errorf("failed to archive output: %w", err)
	}
	fmt.Fprintf(r.stdout, "Archived previous output to %s\n", path)
	return nil
}

func (r *Runner) record(input string, summary *Summary) {
	if r.history == nil {
		return
	}
	err := r.history.Record(history.Run{
		ID:         summary.RunID,
		Input:      input,
		Provider:   r.proc.Provider().Name(),
		Languages:  summary.Languages,
		Succeeded:  summary.Count(StatusSucceeded),
		Partial:    summary.Count(StatusPartial),
		Failed:     summary.Count(StatusFailed),
		StartedAt:  summary.StartedAt,
		FinishedAt: summary.FinishedAt,
	})
	if err != nil {
		fmt.Fprintf(r.stderr, "Warning: %v\n", err)
	}
}

func (r *Runner) printSummary(input string, summary *Summary) {
	fmt.Fprintf(r.stdout, "\n=== Translation Summary ===\n")
	fmt.Fprintf(r.stdout, "Input: %s\n", input)
	fmt.Fprintf(r.stdout, "Run: %s\n", internal.ShortID(summary.RunID))
	for _, code := range summary.Languages {
		o := summary.Outcomes[code]
		switch {
		case o.Document == nil:
			fmt.Fprintf(r.stdout, "  %-6s %-9s %v\n", code, o.Status, o.Err)
		case o.Cached > 0:
			fmt.Fprintf(r.stdout, "  %-6s %-9s %d/%d translated (%d cached)  %s\n", code, o.Status, o.Translated, o.Total, o.Cached, o.Location)
		default:
			fmt.Fprintf(r.stdout, "  %-6s %-9s %d/%d translated  %s\n", code, o.Status, o.Translated, o.Total, o.Location)
		}
	}
	fmt.Fprintf(r.stdout, "Succeeded: %d, Partial: %d, Failed: %d\n",
		summary.Count(StatusSucceeded), summary.Count(StatusPartial), summary.Count(StatusFailed))
	fmt.Fprintf(r.stdout, "===========================\n")
}

// PrintHistory prints the last n recorded runs
func PrintHistory(flags *cli.Flags, w io.Writer, n int) error {
	if flags.HistoryDB == "" {
		return fmt.Errorf("run history is disabled (history.database is empty)")
	}
	store, err := history.Open(flags.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(n)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(w, "%s  %s  %-28s %-10s ok=%d partial=%d failed=%d  [%s] (%v)\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			internal.ShortID(run.ID),
			run.Input,
			run.Provider,
			run.Succeeded, run.Partial, run.Failed,
			strings.Join(run.Languages, ","),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	return nil
}

func (r *Runner) logf(format string, args ...interface{}) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.stdout, format+"\n", args...)
}

func (r *Runner) debugf(format string, args ...interface{}) {
	if r.flags.Verbose {
		r.logf("  [DEBUG] "+format, args...)
	}
}
