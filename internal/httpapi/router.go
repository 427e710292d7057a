package httpapi

import "net/http"

func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	oh := OpportunitiesHandler{Store: d.Store}
	mux.HandleFunc("/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: oh.Root,
	}))
	mux.Handle("/data", ResponseCache(d.Cache, d.Metrics)(methodMux(map[string]http.HandlerFunc{
		http.MethodGet: oh.List,
	})))

	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	if d.Ingest != nil {
		ih := IngestHandler{Ingest: d.Ingest, RunCtx: d.RunCtx}
		mux.HandleFunc("/ingest/status", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: ih.Status,
		}))
		mux.HandleFunc("/ingest/run", methodMux(map[string]http.HandlerFunc{
			http.MethodPost: ih.Run,
		}))
	}

	if d.Hub != nil {
		eh := EventsHandler{Hub: d.Hub}
		mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: eh.ServeSSE,
		}))
	}

	if d.Metrics != nil {
		mux.Handle("/metrics", d.Metrics.Handler())
	}

	return mux
}

// NewHandler wraps the mux in the standard middleware chain.
func NewHandler(d Deps) http.Handler {
	return Chain(NewMux(d),
		RequestID,
		AccessLog,
		Instrument(d.Metrics),
		Recover,
		Cors,
	)
}
