package ingest

import (
	"time"

	"rfpwatch/internal/scrape/types"
)

type Status struct {
	LastRunAt      string               `json:"last_run_at"`
	LastOkAt       string               `json:"last_ok_at"`
	LastError      string               `json:"last_error"`
	LastRunID      string               `json:"last_run_id"`
	LastPersisted  int                  `json:"last_persisted"`
	LastConsidered int                  `json:"last_considered"`
	KeptPrevious   bool                 `json:"kept_previous"`
	Running        bool                 `json:"running"`
	Sources        []types.SourceReport `json:"sources"`
}

func (r *Runner) Status() Status {
	if st, ok := r.status.Load().(Status); ok {
		return st
	}
	return Status{}
}

func (r *Runner) markRunning(at time.Time) {
	st := r.Status()
	st.Running = true
	st.LastRunAt = at.Format(time.RFC3339)
	r.status.Store(st)
}

func (r *Runner) finish(out Outcome, started time.Time, err error) {
	st := r.Status()
	st.Running = false
	st.LastRunAt = started.Format(time.RFC3339)
	st.LastRunID = out.RunID
	st.LastPersisted = out.Persisted
	st.LastConsidered = out.Result.Considered
	st.KeptPrevious = out.KeptPrevious
	st.Sources = out.Result.Sources
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = time.Now().Format(time.RFC3339)
	}
	r.status.Store(st)
}
