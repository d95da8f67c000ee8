package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"codeberg.org/snonux/polyglot/internal/document"
	"codeberg.org/snonux/polyglot/internal/translation"
)

// Task is one string leaf to translate into one language
type Task struct {
	Path           document.Path
	SourceText     string
	TargetLanguage string
	TargetName     string
}

// Result is the outcome of a Task. Exactly one of Text and Err is set.
type Result struct {
	Path   document.Path
	Text   string
	Err    error
	Cached bool
}

// Failed reports whether the task failed
func (r Result) Failed() bool {
	return r.Err != nil
}

// Config holds scheduler settings
type Config struct {
	// MaxWorkers bounds the provider calls in flight (default 1)
	MaxWorkers int
	// BatchDelay pauses the dispatcher between waves of MaxWorkers tasks
	BatchDelay time.Duration
	// RequestsPerSecond limits provider calls (0 = unlimited)
	RequestsPerSecond float64
	SourceLanguage    string
	Model             string
}

// Scheduler translates tasks with a fixed pool of workers
type Scheduler struct {
	config   Config
	provider translation.Provider
	retrier  *translation.Retrier
	cache    *translation.Cache
	limiter  *rate.Limiter

	// OnProgress is called after every finished task
	OnProgress func(done, total int)

	done  atomic.Int64
	calls atomic.Int64
}

// New creates a scheduler. A nil cache gets a fresh one.
func New(config Config, provider translation.Provider, retrier *translation.Retrier, cache *translation.Cache) *Scheduler {
	if config.MaxWorkers < 1 {
		config.MaxWorkers = 1
	}
	if cache == nil {
		cache = translation.NewCache()
	}
	if retrier == nil {
		retrier = translation.NewRetrier(translation.DefaultRetryPolicy())
	}

	s := &Scheduler{
		config:   config,
		provider: provider,
		retrier:  retrier,
		cache:    cache,
	}
	if config.RequestsPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}
	return s
}

// Cache returns the scheduler's translation cache
func (s *Scheduler) Cache() *translation.Cache {
	return s.cache
}

// ProviderCalls returns how many provider attempts were made
func (s *Scheduler) ProviderCalls() int64 {
	return s.calls.Load()
}

// Run translates all tasks and returns one Result per task at the same
// index. Run returns when every task has a result. When ctx is cancelled,
// tasks that were not started yet fail with the context error.
func (s *Scheduler) Run(ctx context.Context, tasks []Task) []Result {
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	total := len(tasks)
	s.done.Store(0)

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := s.config.MaxWorkers
	if workers > total {
		workers = total
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.resolve(ctx, tasks[i])
				s.finish(total)
			}
		}()
	}

	dispatched := s.dispatch(ctx, jobs, total)
	close(jobs)
	wg.Wait()

	for i := dispatched; i < total; i++ {
		results[i] = Result{Path: tasks[i].Path, Err: ctx.Err()}
		s.finish(total)
	}
	return results
}

// dispatch feeds task indices to the workers and returns how many were
// handed out
func (s *Scheduler) dispatch(ctx context.Context, jobs chan<- int, total int) int {
	for i := 0; i < total; i++ {
		// Delay between waves (skip first)
		if i > 0 && s.config.BatchDelay > 0 && i%s.config.MaxWorkers == 0 {
			t := time.NewTimer(s.config.BatchDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return i
			case <-t.C:
			}
		}

		select {
		case <-ctx.Done():
			return i
		case jobs <- i:
		}
	}
	return total
}

func (s *Scheduler) finish(total int) {
	done := s.done.Add(1)
	if s.OnProgress != nil {
		s.OnProgress(int(done), total)
	}
}

func (s *Scheduler) resolve(ctx context.Context, task Task) Result {
	if text, ok := s.cache.Get(task.SourceText, task.TargetLanguage); ok {
		return Result{Path: task.Path, Text: text, Cached: true}
	}

	req := translation.Request{
		Text:           task.SourceText,
		SourceLanguage: s.config.SourceLanguage,
		TargetLanguage: task.TargetLanguage,
		TargetName:     task.TargetName,
		Model:          s.config.Model,
	}

	text, err := s.retrier.Do(ctx, func(ctx context.Context) (string, error) {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("rate limiter: %w", err)
			}
		}
		s.calls.Add(1)
		return s.provider.Translate(ctx, req)
	})
	if err != nil {
		var pe *translation.ProviderError
		if errors.As(err, &pe) && pe.Provider == "" {
			pe.Provider = s.provider.Name()
		}
		return Result{Path: task.Path, Err: err}
	}

	return Result{Path: task.Path, Text: s.cache.Put(task.SourceText, task.TargetLanguage, text)}
}
