package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rfpwatch/internal/domain"
	"rfpwatch/internal/scrape/types"
	"rfpwatch/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("rfpwatch/scrape")

const (
	DefaultSourceTimeout = 10 * time.Second
	DefaultWorkers       = 4
)

// Pipeline fans out to every fetcher and merges what comes back in
// registration order.
type Pipeline struct {
	Fetchers      []types.Fetcher
	SourceTimeout time.Duration
	Workers       int
	Metrics       *telemetry.Metrics
}

type Result struct {
	Opportunities []domain.Opportunity
	Considered    int
	Kept          int
	Sources       []types.SourceReport
}

// Succeeded counts sources that returned without error.
func (r Result) Succeeded() int {
	n := 0
	for _, s := range r.Sources {
		if s.OK() {
			n++
		}
	}
	return n
}

// Run never fails: a source that errors, panics or times out contributes
// nothing and is reported in Result.Sources.
func (p Pipeline) Run(ctx context.Context) Result {
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	frags := make([][]domain.RawFragment, len(p.Fetchers))
	reports := make([]types.SourceReport, len(p.Fetchers))

	var g errgroup.Group
	g.SetLimit(p.workers())
	for i, f := range p.Fetchers {
		g.Go(func() error {
			frags[i], reports[i] = p.fetchOne(ctx, f)
			return nil // best-effort: don't cancel siblings
		})
	}
	_ = g.Wait()

	var res Result
	for i := range p.Fetchers {
		for _, fr := range frags[i] {
			res.Considered++
			op := Normalize(fr)
			if !keepOpportunity(op) {
				continue
			}
			reports[i].Kept++
			res.Opportunities = append(res.Opportunities, op)
		}
	}
	res.Kept = len(res.Opportunities)
	res.Sources = reports

	span.SetAttributes(
		attribute.Int("considered", res.Considered),
		attribute.Int("kept", res.Kept),
	)
	slog.InfoContext(ctx, "pipeline finished",
		"sources", len(p.Fetchers),
		"succeeded", res.Succeeded(),
		"considered", res.Considered,
		"kept", res.Kept,
	)
	return res
}

func (p Pipeline) fetchOne(ctx context.Context, f types.Fetcher) (frags []domain.RawFragment, rep types.SourceReport) {
	rep.Name = f.Name()
	start := time.Now()

	fctx, cancel := context.WithTimeout(ctx, p.sourceTimeout())
	defer cancel()
	fctx, span := tracer.Start(fctx, "source.fetch", trace.WithAttributes(attribute.String("source", rep.Name)))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			frags = nil
			rep.Fetched = 0
			rep.Err = fmt.Errorf("%s panicked: %v", rep.Name, r)
		}
		rep.Duration = time.Since(start)
		p.Metrics.ObserveSource(rep.Name, rep.Fetched, rep.Duration, rep.Err != nil)

		if rep.Err != nil {
			rep.Error = rep.Err.Error()
			span.RecordError(rep.Err)
			span.SetStatus(codes.Error, "fetch failed")
			slog.WarnContext(ctx, "source failed", "source", rep.Name, "err", rep.Err, "dur_ms", rep.Duration.Milliseconds())
			return
		}
		slog.InfoContext(ctx, "source fetched", "source", rep.Name, "fragments", rep.Fetched, "dur_ms", rep.Duration.Milliseconds())
	}()

	slog.DebugContext(ctx, "source running", "source", rep.Name)
	out, err := f.Fetch(fctx)
	if err != nil {
		rep.Err = err
		return nil, rep
	}
	for i := range out {
		if out[i].Source == "" {
			out[i].Source = rep.Name
		}
	}
	rep.Fetched = len(out)
	return out, rep
}

func (p Pipeline) sourceTimeout() time.Duration {
	if p.SourceTimeout > 0 {
		return p.SourceTimeout
	}
	return DefaultSourceTimeout
}

func (p Pipeline) workers() int {
	if p.Workers > 0 {
		return p.Workers
	}
	return DefaultWorkers
}
