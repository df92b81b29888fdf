// Package batch canonicalizes many URLs concurrently, preserving input order
// and streaming progress events.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/lukemcguire/canonhost/blocklist"
	"github.com/lukemcguire/canonhost/canon"
	"github.com/lukemcguire/canonhost/result"
	"github.com/lukemcguire/canonhost/urlutil"
)

// Config holds batch configuration.
type Config struct {
	Concurrency      int               // Number of workers (default NumCPU)
	ProgressInterval time.Duration     // Minimum gap between progress events (default 100ms)
	Blocklist        *blocklist.Filter // Optional; marks matching records as blocked
	Logger           *slog.Logger      // Optional; defaults to slog.Default()
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency:      runtime.NumCPU(),
		ProgressInterval: 100 * time.Millisecond,
	}
}

// Event reports progress after a record has been processed.
type Event struct {
	Line      int
	Canonical string
	Processed int
	Total     int
	Failed    int
	Blocked   int
}

// Runner canonicalizes batches of inputs.
type Runner struct {
	cfg        Config
	progressCh chan<- Event
}

// New creates a Runner with the given configuration.
// The progressCh parameter is optional; pass nil to disable progress events.
func New(cfg Config, progressCh chan<- Event) *Runner {
	defaults := DefaultConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = defaults.ProgressInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Runner{cfg: cfg, progressCh: progressCh}
}

// Run canonicalizes every input and returns the records in input order.
// Absent and undecodable inputs produce failed records; they never stop the
// batch. If ctx is cancelled, unprocessed inputs are reported as canceled and
// the context error is returned alongside the partial result.
func (r *Runner) Run(ctx context.Context, inputs []Input) (*result.Result, error) {
	start := time.Now()

	records := make([]result.Record, len(inputs))
	processed := make([]bool, len(inputs))
	jobs := make(chan int, r.cfg.Concurrency*3)
	tr := &tracker{
		total:     len(inputs),
		sometimes: rate.Sometimes{Interval: r.cfg.ProgressInterval},
	}

	errGroup, groupCtx := errgroup.WithContext(ctx)

	errGroup.Go(func() error {
		defer close(jobs)
		for i := range inputs {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			select {
			case jobs <- i:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
		}
		return nil
	})

	for range r.cfg.Concurrency {
		errGroup.Go(func() error {
			// Each index is handed to exactly one worker, so writes never overlap.
			for i := range jobs {
				records[i] = r.process(inputs[i])
				processed[i] = true
				r.report(groupCtx, tr.observe(records[i]), tr)
			}
			return nil
		})
	}

	waitErr := errGroup.Wait()

	for i, done := range processed {
		if !done {
			records[i] = r.fail(result.Record{Line: inputs[i].Line, Input: inputs[i].URL}, context.Canceled)
		}
	}

	unique := make(map[string]struct{}, len(records))
	stats := result.Stats{Total: len(records)}
	for _, rec := range records {
		if rec.Failed() {
			stats.Failed++
			continue
		}
		unique[rec.Canonical] = struct{}{}
		if rec.Blocked {
			stats.Blocked++
		}
	}
	stats.Unique = len(unique)
	stats.Duration = time.Since(start)

	r.cfg.Logger.Debug("batch finished",
		slog.Int("total", stats.Total),
		slog.Int("failed", stats.Failed),
		slog.Int("blocked", stats.Blocked),
		slog.Duration("duration", stats.Duration))

	res := &result.Result{Records: records, Stats: stats}
	if waitErr != nil {
		return res, fmt.Errorf("canonicalize batch: %w", waitErr)
	}
	return res, nil
}

// Canonicalize processes a single input the same way Run does.
func (r *Runner) Canonicalize(in Input) result.Record {
	return r.process(in)
}

func (r *Runner) process(in Input) result.Record {
	rec := result.Record{Line: in.Line, Input: in.URL, External: in.External}
	if in.Err != nil {
		return r.fail(rec, in.Err)
	}

	key, err := canon.CanonicalizePtr(in.URL)
	if err != nil {
		return r.fail(rec, err)
	}

	rec.Canonical = key
	rec.Domain = urlutil.RegistrableDomain(canon.NormalizeHost(canon.Split(*in.URL).Host))
	if r.cfg.Blocklist != nil {
		rec.Blocked = r.cfg.Blocklist.ContainsKey(key)
	}
	if rec.Blocked {
		r.cfg.Logger.Info("blocklisted url", slog.Int("line", in.Line), slog.String("canonical", key))
	}
	return rec
}

func (r *Runner) fail(rec result.Record, err error) result.Record {
	rec.Error = err.Error()
	rec.ErrorCategory = result.ClassifyError(err)
	r.cfg.Logger.Debug("record failed",
		slog.Int("line", rec.Line),
		slog.String("category", string(rec.ErrorCategory)),
		slog.Any("error", err))
	return rec
}

// report sends evt on the progress channel, throttled to one event per
// ProgressInterval except for the last record, which is always sent.
func (r *Runner) report(ctx context.Context, evt Event, tr *tracker) {
	if r.progressCh == nil || !tr.due(evt) {
		return
	}
	select {
	case r.progressCh <- evt:
	case <-ctx.Done():
	}
}

// tracker accumulates progress counters shared by the workers of one run.
type tracker struct {
	mu        sync.Mutex
	total     int
	processed int
	failed    int
	blocked   int
	sometimes rate.Sometimes
}

// due reports whether evt should be sent. It must not send: Sometimes holds
// its lock while the callback runs.
func (t *tracker) due(evt Event) bool {
	if evt.Processed == evt.Total {
		return true
	}
	send := false
	t.sometimes.Do(func() { send = true })
	return send
}

func (t *tracker) observe(rec result.Record) Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.processed++
	if rec.Failed() {
		t.failed++
	}
	if rec.Blocked {
		t.blocked++
	}
	return Event{
		Line:      rec.Line,
		Canonical: rec.Canonical,
		Processed: t.processed,
		Total:     t.total,
		Failed:    t.failed,
		Blocked:   t.blocked,
	}
}
