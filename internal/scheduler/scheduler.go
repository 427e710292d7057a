package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

type Task func(ctx context.Context) error

// Cron runs tasks on standard cron specs. A task still running when its
// next tick arrives is skipped for that tick.
type Cron struct {
	ctx  context.Context
	cron *cron.Cron
}

func New(ctx context.Context) *Cron {
	logger := cronLogger{}
	return &Cron{
		ctx: ctx,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

func (s *Cron) Add(spec, name string, task Task) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := task(s.ctx); err != nil {
			slog.Error("scheduled task failed", "task", name, "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	slog.Info("task scheduled", "task", name, "spec", spec)
	return nil
}

func (s *Cron) Start() { s.cron.Start() }

// Stop halts scheduling; the returned context is done once running tasks finish.
func (s *Cron) Stop() context.Context { return s.cron.Stop() }

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"err", err}, keysAndValues...)...)
}
