package ingest

import (
	"context"
	"errors"
	"log/slog"

	"rfpwatch/internal/scheduler"
)

// Task adapts RunOnce for the scheduler. A tick that finds another run in
// flight is skipped quietly.
func (r *Runner) Task() scheduler.Task {
	return func(ctx context.Context) error {
		_, err := r.RunOnce(ctx)
		if errors.Is(err, ErrRunInProgress) {
			slog.Info("ingest tick skipped; run in progress")
			return nil
		}
		return err
	}
}

// Start runs one ingestion in the background, for manual triggers. The
// in-process guard is taken before it returns, so of two concurrent callers
// exactly one gets true.
func (r *Runner) Start(ctx context.Context) bool {
	if !r.running.CompareAndSwap(false, true) {
		return false
	}
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		defer r.running.Store(false)
		_, err := r.run(ctx)
		switch {
		case errors.Is(err, ErrRunInProgress):
			slog.Info("manual ingest skipped; another process holds the run lock")
		case err != nil:
			slog.Error("manual ingest failed", "err", err)
		}
	}()
	return true
}

// Wait blocks until every run begun with Start has returned.
func (r *Runner) Wait() { r.inflight.Wait() }
