package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"rfpwatch/internal/domain"
)

// OpportunityDTO is the public shape of a record on /data.
type OpportunityDTO struct {
	Company  string `json:"company"`
	Province string `json:"province"`
	Sector   string `json:"sector"`
	URL      string `json:"url"`
	Deadline string `json:"deadline"`
	Budget   string `json:"budget"`
}

func toDTO(op domain.Opportunity) OpportunityDTO {
	return OpportunityDTO{
		Company:  op.Organization,
		Province: op.Region,
		Sector:   op.Sector,
		URL:      op.Link,
		Deadline: op.Deadline,
		Budget:   op.Budget,
	}
}

type OpportunitiesHandler struct {
	Store Store
}

// List serves the whole current generation. An empty generation is an empty
// array, not an error.
func (h OpportunitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	ops, err := h.Store.List(r.Context())
	if err != nil {
		slog.Error("list opportunities", "request_id", RequestIDFrom(r.Context()), "err", err)
		WriteError(w, r, http.StatusServiceUnavailable, "store_unavailable", "opportunity store is unavailable")
		return
	}

	out := make([]OpportunityDTO, 0, len(ops))
	for _, op := range ops {
		out = append(out, toDTO(op))
	}
	WriteJSON(w, http.StatusOK, out)
}

const rootBanner = "Risk Opportunities API – use /data for JSON"

// Root is the plain-text liveness page. It stays 200 while the store is
// down; only the counts are omitted.
func (h OpportunitiesHandler) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		WriteError(w, r, http.StatusNotFound, "not_found", "not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, rootBanner)

	st, err := h.Store.Stats(r.Context())
	if err != nil {
		slog.Warn("root stats", "err", err)
		return
	}
	fmt.Fprintf(w, "records: %d\n", st.Count)
	if !st.LastUpdated.IsZero() {
		fmt.Fprintf(w, "last updated: %s\n", st.LastUpdated.Format(time.RFC3339))
	}
}
