package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/snonux/polyglot/internal"
	"codeberg.org/snonux/polyglot/internal/document"
	"codeberg.org/snonux/polyglot/internal/language"
	"codeberg.org/snonux/polyglot/internal/output"
	"codeberg.org/snonux/polyglot/internal/scheduler"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// Status is the result of one language run
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
)

// Sink persists a translated document under the requested language code
// and returns its location
type Sink interface {
	Write(code string, data []byte) (string, error)
}

// Options configures a Processor
type Options struct {
	SourceLanguage    string
	Model             string
	MaxWorkers        int
	BatchDelay        time.Duration
	RequestsPerSecond float64
	Retry             translation.RetryPolicy

	// Languages resolves requested codes (default: language.Default())
	Languages *language.Table
	// Marker replaces failed leaves (default: document.DefaultMarker)
	Marker document.MarkerFunc
	// Format of the documents handed to the Sink
	Format document.Format
	// WrapProvider decorates the provider for a single language run, so
	// per-run state such as circuit breakers starts fresh every time
	WrapProvider func(translation.Provider) translation.Provider

	OnLog      func(format string, args ...interface{})
	OnProgress func(lang string, done, total int)
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		SourceLanguage: "zh-CN",
		MaxWorkers:     5,
		Retry:          translation.DefaultRetryPolicy(),
		Format:         document.FormatJSON,
	}
}

// LanguageOutcome is the result of translating the document into one
// requested language
type LanguageOutcome struct {
	Requested string
	Canonical string
	Status    Status
	Location  string

	// Document is the assembled output (nil if the language failed before
	// scheduling)
	Document *document.Node

	Total      int // translatable leaves
	Translated int
	Cached     int
	Failed     int

	FailedPaths []string
	Err         error

	StartedAt  time.Time
	FinishedAt time.Time
}

// Summary aggregates the outcomes of one Translate call
type Summary struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	// Languages lists requested codes in request order, without duplicates
	Languages []string
	Outcomes  map[string]*LanguageOutcome
}

// Count returns the number of languages with the given status
func (s *Summary) Count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// HasFailures reports whether any leaf or language failed
func (s *Summary) HasFailures() bool {
	for _, o := range s.Outcomes {
		if o.Status != StatusSucceeded {
			return true
		}
	}
	return false
}

// ErrorReport builds the error artifact for every language that did not
// fully succeed
func (s *Summary) ErrorReport() *output.ErrorReport {
	report := &output.ErrorReport{
		RunID:       s.RunID,
		GeneratedAt: s.FinishedAt,
		Languages:   make(map[string]output.LanguageReport),
	}
	for _, code := range s.Languages {
		o := s.Outcomes[code]
		if o == nil || o.Status == StatusSucceeded {
			continue
		}
		entry := output.LanguageReport{
			Timestamp:   o.FinishedAt,
			Status:      string(o.Status),
			Canonical:   o.Canonical,
			FailedPaths: o.FailedPaths,
		}
		if entry.FailedPaths == nil {
			entry.FailedPaths = []string{}
		}
		if o.Err != nil {
			entry.Error = o.Err.Error()
		}
		report.Languages[code] = entry
	}
	return report
}

// Processor is the language driver: it runs the walk, schedule and
// assemble pipeline once per requested language
type Processor struct {
	provider translation.Provider
	opts     Options
}

// NewProcessor creates a processor for provider
func NewProcessor(provider translation.Provider, opts Options) (*Processor, error) {
	if provider == nil {
		return nil, fmt.Errorf("no translation provider configured")
	}
	if err := opts.Retry.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}
	if opts.MaxWorkers < 1 {
		return nil, fmt.Errorf("max workers must be at least 1, got %d", opts.MaxWorkers)
	}
	if opts.BatchDelay < 0 {
		return nil, fmt.Errorf("batch delay must not be negative, got %v", opts.BatchDelay)
	}
	if opts.Languages == nil {
		opts.Languages = language.Default()
	}
	if opts.Marker == nil {
		opts.Marker = document.DefaultMarker
	}
	if opts.Format == "" {
		opts.Format = document.FormatJSON
	}
	return &Processor{provider: provider, opts: opts}, nil
}

// Options returns the processor options
func (p *Processor) Options() Options {
	return p.opts
}

// WithSourceLanguage returns a processor sharing p's provider that
// translates from code instead. An empty code returns p.
func (p *Processor) WithSourceLanguage(code string) *Processor {
	if code == "" || code == p.opts.SourceLanguage {
		return p
	}
	opts := p.opts
	opts.SourceLanguage = code
	return &Processor{provider: p.provider, opts: opts}
}

// WithFormat returns a processor sharing p's provider that hands documents
// to the Sink in format f
func (p *Processor) WithFormat(f document.Format) *Processor {
	if f == "" || f == p.opts.Format {
		return p
	}
	opts := p.opts
	opts.Format = f
	return &Processor{provider: p.provider, opts: opts}
}

// Provider returns the provider the processor translates with
func (p *Processor) Provider() translation.Provider {
	return p.provider
}

// Translate translates doc into every requested language, one language
// after the other. Leaf and language failures are recorded in the summary.
// The returned error is non-nil only for fatal failures: a Sink error
// (*translation.IOError) or a cancelled context. A nil sink skips
// persisting.
func (p *Processor) Translate(ctx context.Context, doc *document.Node, langs []string, sink Sink) (*Summary, error) {
	summary := &Summary{
		RunID:     internal.NewRunID(),
		StartedAt: time.Now(),
		Outcomes:  make(map[string]*LanguageOutcome),
	}
	defer func() { summary.FinishedAt = time.Now() }()

	for _, code := range langs {
		if _, seen := summary.Outcomes[code]; seen {
			continue
		}

		outcome := p.TranslateLanguage(ctx, doc, code)
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Languages = append(summary.Languages, code)
		summary.Outcomes[code] = outcome

		if sink == nil || outcome.Document == nil {
			continue
		}

		data, err := document.Marshal(outcome.Document, p.opts.Format)
		if err != nil {
			return summary, fmt.Errorf("encoding %s output: %w", code, err)
		}
		location, err := sink.Write(code, data)
		if err != nil {
			var ioErr *translation.IOError
			if !errors.As(err, &ioErr) {
				err = &translation.IOError{Op: "write " + code, Err: err}
			}
			return summary, err
		}
		outcome.Location = location
		p.logf("Saved %s to %s", code, location)
	}

	return summary, nil
}

// languageRun is the state of one language run. It is created at the start
// of TranslateLanguage and dropped when the outcome is built.
type languageRun struct {
	requested string
	canonical string
	total     int
	completed atomic.Int64
	cache     *translation.Cache

	mu          sync.Mutex
	failedPaths []string
}

func (r *languageRun) fail(path document.Path) {
	r.mu.Lock()
	r.failedPaths = append(r.failedPaths, path.String())
	r.mu.Unlock()
}

// TranslateLanguage translates doc into one requested language. It never
// returns an error: failures are reported in the outcome.
func (p *Processor) TranslateLanguage(ctx context.Context, doc *document.Node, code string) *LanguageOutcome {
	outcome := &LanguageOutcome{Requested: code, StartedAt: time.Now()}
	defer func() { outcome.FinishedAt = time.Now() }()

	lang, err := p.opts.Languages.Resolve(code)
	if err != nil {
		outcome.Canonical = p.opts.Languages.Normalize(code)
		outcome.Status = StatusFailed
		outcome.Err = err
		p.logf("Skipping %s: %v", code, err)
		return outcome
	}
	outcome.Canonical = lang.Code

	run := &languageRun{
		requested: code,
		canonical: lang.Code,
		cache:     translation.NewCache(),
	}

	var tasks []scheduler.Task
	for _, leaf := range document.Walk(doc) {
		if !leaf.Translatable() {
			continue
		}
		tasks = append(tasks, scheduler.Task{
			Path:           leaf.Path,
			SourceText:     leaf.Text,
			TargetLanguage: lang.Code,
			TargetName:     lang.Name,
		})
	}
	run.total = len(tasks)
	outcome.Total = run.total

	if code != lang.Code {
		p.logf("Translating %s (as %s, %s): %d strings", code, lang.Code, lang.Name, run.total)
	} else {
		p.logf("Translating %s (%s): %d strings", code, lang.Name, run.total)
	}

	results := p.newScheduler(run).Run(ctx, tasks)

	outcomes := make(map[string]document.Outcome, len(results))
	for _, r := range results {
		if r.Failed() {
			run.fail(r.Path)
			outcomes[r.Path.Key()] = document.Outcome{Failed: true}
			if outcome.Err == nil {
				outcome.Err = r.Err
			}
			continue
		}
		if r.Cached {
			outcome.Cached++
		}
		outcomes[r.Path.Key()] = document.Outcome{Text: r.Text}
	}

	outcome.Document = document.Assemble(doc, outcomes, p.opts.Marker)
	outcome.FailedPaths = run.failedPaths
	outcome.Failed = len(run.failedPaths)
	outcome.Translated = run.total - outcome.Failed

	switch {
	case outcome.Failed == 0:
		outcome.Status = StatusSucceeded
		outcome.Err = nil
	case outcome.Failed == run.total:
		outcome.Status = StatusFailed
	default:
		outcome.Status = StatusPartial
	}

	hits, misses := run.cache.Stats()
	p.logf("Finished %s: %d translated, %d failed (cache: %d hits, %d misses)",
		code, outcome.Translated, outcome.Failed, hits, misses)

	return outcome
}

func (p *Processor) newScheduler(run *languageRun) *scheduler.Scheduler {
	retrier := translation.NewRetrier(p.opts.Retry)
	retrier.OnRetry = func(attempt int, delay time.Duration, err error) {
		p.logf("  %s: attempt %d failed, retrying in %v: %v", run.requested, attempt, delay, err)
	}

	prov := p.provider
	if p.opts.WrapProvider != nil {
		prov = p.opts.WrapProvider(prov)
	}

	s := scheduler.New(scheduler.Config{
		MaxWorkers:        p.opts.MaxWorkers,
		BatchDelay:        p.opts.BatchDelay,
		RequestsPerSecond: p.opts.RequestsPerSecond,
		SourceLanguage:    p.opts.SourceLanguage,
		Model:             p.opts.Model,
	}, prov, retrier, run.cache)

	s.OnProgress = func(done, total int) {
		run.completed.Store(int64(done))
		if p.opts.OnProgress != nil {
			p.opts.OnProgress(run.requested, done, total)
		}
	}
	return s
}

func (p *Processor) logf(format string, args ...interface{}) {
	if p.opts.OnLog != nil {
		p.opts.OnLog(format, args...)
	}
}
