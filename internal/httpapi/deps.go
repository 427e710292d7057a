package httpapi

import (
	"context"

	"rfpwatch/internal/cache"
	"rfpwatch/internal/domain"
	"rfpwatch/internal/events"
	"rfpwatch/internal/ingest"
	"rfpwatch/internal/store"
	"rfpwatch/internal/telemetry"
)

// Store is the read side of the opportunity store.
type Store interface {
	List(ctx context.Context) ([]domain.Opportunity, error)
	Stats(ctx context.Context) (store.Stats, error)
}

// Ingester is the manual trigger surface of ingest.Runner.
type Ingester interface {
	Start(ctx context.Context) bool
	Status() ingest.Status
}

type Deps struct {
	Store Store
	Hub   *events.Hub

	// Cache is optional; nil serves every /data request from the store.
	Cache cache.Cache

	Ingest  Ingester
	Metrics *telemetry.Metrics

	// RunCtx outlives requests; manual runs are bound to it.
	RunCtx context.Context
}
