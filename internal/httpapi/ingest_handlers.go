package httpapi

import (
	"context"
	"net/http"
)

type IngestHandler struct {
	Ingest Ingester
	RunCtx context.Context
}

func (h IngestHandler) Status(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Ingest.Status())
}

// Run starts one ingestion in the background. Loopback callers only.
func (h IngestHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !isLoopback(r) {
		WriteError(w, r, http.StatusForbidden, "forbidden", "manual runs are only accepted from loopback")
		return
	}

	ctx := h.RunCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if !h.Ingest.Start(ctx) {
		WriteError(w, r, http.StatusConflict, "run_in_progress", "an ingestion run is already in progress")
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}
