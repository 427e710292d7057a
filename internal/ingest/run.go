package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"rfpwatch/internal/domain"
	"rfpwatch/internal/events"
	"rfpwatch/internal/scrape"
	"rfpwatch/internal/telemetry"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

var ErrRunInProgress = errors.New("ingestion run already in progress")

// Store is the persistence sink a run writes its generation to.
type Store interface {
	ReplaceAll(ctx context.Context, ops []domain.Opportunity) (int, error)
}

// Runner executes ingestion runs: pipeline, then one transactional replace.
// Runs never overlap, within the process or across processes sharing LockPath.
type Runner struct {
	Pipeline scrape.Pipeline
	Store    Store
	LockPath string
	Hub      *events.Hub
	Metrics  *telemetry.Metrics

	// OnReplaced runs after a new generation is committed.
	OnReplaced func()

	running  atomic.Bool
	inflight sync.WaitGroup
	status   atomic.Value // Status
}

type Outcome struct {
	RunID        string
	Result       scrape.Result
	Persisted    int
	KeptPrevious bool
}

// RunOnce fetches every source and replaces the stored generation. Source
// failures are reported, not returned; only lock, cancellation and
// persistence failures produce an error. When every source failed the
// previous generation is left in place.
func (r *Runner) RunOnce(ctx context.Context) (Outcome, error) {
	if !r.running.CompareAndSwap(false, true) {
		return Outcome{}, ErrRunInProgress
	}
	defer r.running.Store(false)
	return r.run(ctx)
}

// run is the body of RunOnce; the caller holds the in-process guard.
func (r *Runner) run(ctx context.Context) (Outcome, error) {
	unlock, err := r.lock()
	if err != nil {
		return Outcome{}, err
	}
	defer unlock()

	out := Outcome{RunID: uuid.NewString()}
	log := slog.With("run_id", out.RunID)
	started := time.Now()
	r.markRunning(started)

	out.Result = r.Pipeline.Run(ctx)

	if err := ctx.Err(); err != nil {
		err = fmt.Errorf("run aborted before persisting: %w", err)
		r.finish(out, started, err)
		return out, err
	}

	if len(r.Pipeline.Fetchers) > 0 && out.Result.Succeeded() == 0 {
		out.KeptPrevious = true
		log.Warn("every source failed; keeping previous generation", "sources", len(r.Pipeline.Fetchers))
		r.Metrics.ObserveIngest("kept_previous", 0)
		r.finish(out, started, nil)
		return out, nil
	}

	n, err := r.Store.ReplaceAll(ctx, out.Result.Opportunities)
	if err != nil {
		err = fmt.Errorf("persist generation: %w", err)
		log.Error("ingestion failed", "err", err)
		r.Metrics.ObserveIngest("error", 0)
		r.Hub.Publish(events.MakeEvent("", events.TypeIngestFailed, 1, events.IngestFailed{
			RunID: out.RunID,
			Error: "persistence failed",
		}))
		r.finish(out, started, err)
		return out, err
	}
	out.Persisted = n

	log.Info("inserted opportunities",
		"count", n,
		"considered", out.Result.Considered,
		"dur_ms", time.Since(started).Milliseconds(),
	)
	r.Metrics.ObserveIngest("ok", n)
	if r.OnReplaced != nil {
		r.OnReplaced()
	}
	r.Hub.Publish(events.MakeEvent("", events.TypeGenerationReplaced, 1, events.GenerationReplaced{
		RunID:      out.RunID,
		Persisted:  n,
		Considered: out.Result.Considered,
		Failed:     len(out.Result.Sources) - out.Result.Succeeded(),
	}))
	r.finish(out, started, nil)
	return out, nil
}

// Running reports whether a run is in flight in this process.
func (r *Runner) Running() bool { return r.running.Load() }

func (r *Runner) lock() (func(), error) {
	if r.LockPath == "" {
		return func() {}, nil
	}
	fl := flock.New(r.LockPath)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", r.LockPath, err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return func() { _ = fl.Unlock() }, nil
}
