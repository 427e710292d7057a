package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rfpwatch/internal/cache"
	"rfpwatch/internal/domain"
	"rfpwatch/internal/ingest"
	"rfpwatch/internal/store"
	"rfpwatch/internal/telemetry"

	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	ops   []domain.Opportunity
	stats store.Stats
	err   error
	lists int
}

func (f *fakeStore) List(context.Context) ([]domain.Opportunity, error) {
	f.lists++
	if f.err != nil {
		return nil, f.err
	}
	return f.ops, nil
}

func (f *fakeStore) Stats(context.Context) (store.Stats, error) {
	if f.err != nil {
		return store.Stats{}, f.err
	}
	return f.stats, nil
}

type fakeIngest struct {
	busy    bool
	started int
}

func (f *fakeIngest) Start(context.Context) bool {
	if f.busy {
		return false
	}
	f.started++
	return true
}

func (f *fakeIngest) Status() ingest.Status {
	return ingest.Status{LastPersisted: 6, Running: f.busy}
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDataReturnsOpportunities(t *testing.T) {
	st := &fakeStore{ops: []domain.Opportunity{{
		Organization: "City of Toronto",
		Region:       "Ontario",
		Sector:       "Infrastructure",
		Link:         "https://example.com/rfp/1",
		Deadline:     "2026-03-15",
		Budget:       "$250k",
	}}}
	h := NewHandler(Deps{Store: st})

	rec := serve(t, h, http.MethodGet, "/data")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []OpportunityDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, []OpportunityDTO{{
		Company:  "City of Toronto",
		Province: "Ontario",
		Sector:   "Infrastructure",
		URL:      "https://example.com/rfp/1",
		Deadline: "2026-03-15",
		Budget:   "$250k",
	}}, got)
}

func TestDataEmptySetIsEmptyArray(t *testing.T) {
	h := NewHandler(Deps{Store: &fakeStore{ops: []domain.Opportunity{}}})

	rec := serve(t, h, http.MethodGet, "/data")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestDataStoreFailureIsServiceUnavailable(t *testing.T) {
	h := NewHandler(Deps{Store: &fakeStore{err: errors.New("dial tcp 10.0.0.5:5432: connection refused")}})

	rec := serve(t, h, http.MethodGet, "/data")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotContains(t, rec.Body.String(), "10.0.0.5")

	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	require.Equal(t, "store_unavailable", e.Error.Code)
	require.NotEmpty(t, e.Error.RequestID)
}

func TestDataRejectsOtherMethods(t *testing.T) {
	h := NewHandler(Deps{Store: &fakeStore{}})
	rec := serve(t, h, http.MethodDelete, "/data")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDataIsCached(t *testing.T) {
	st := &fakeStore{ops: []domain.Opportunity{{Organization: "A", Deadline: "2026-01-01"}}}
	c := cache.NewMemory(8, time.Minute)
	h := NewHandler(Deps{Store: st, Cache: c, Metrics: telemetry.NewMetrics()})

	first := serve(t, h, http.MethodGet, "/data")
	require.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := serve(t, h, http.MethodGet, "/data")
	require.Equal(t, "HIT", second.Header().Get("X-Cache"))
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, 1, st.lists)

	require.NoError(t, c.Purge())
	serve(t, h, http.MethodGet, "/data")
	require.Equal(t, 2, st.lists)
}

func TestDataFailureIsNotCached(t *testing.T) {
	st := &fakeStore{err: errors.New("down")}
	h := NewHandler(Deps{Store: st, Cache: cache.NewMemory(8, time.Minute)})

	require.Equal(t, http.StatusServiceUnavailable, serve(t, h, http.MethodGet, "/data").Code)
	st.err = nil
	st.ops = []domain.Opportunity{}
	require.Equal(t, http.StatusOK, serve(t, h, http.MethodGet, "/data").Code)
	require.Equal(t, 2, st.lists)
}

func TestRootIsPlainTextLiveness(t *testing.T) {
	updated := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)
	h := NewHandler(Deps{Store: &fakeStore{stats: store.Stats{Count: 6, LastUpdated: updated}}})

	rec := serve(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, rootBanner))
	require.Contains(t, body, "records: 6")
	require.Contains(t, body, "2026-02-01T06:00:00Z")
}

func TestRootStaysUpWhenStoreIsDown(t *testing.T) {
	h := NewHandler(Deps{Store: &fakeStore{err: errors.New("down")}})

	rec := serve(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, rootBanner+"\n", rec.Body.String())

	require.Equal(t, http.StatusNotFound, serve(t, h, http.MethodGet, "/nope").Code)
}

func TestHealth(t *testing.T) {
	h := NewHandler(Deps{Store: &fakeStore{}})
	rec := serve(t, h, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestIngestRun(t *testing.T) {
	ing := &fakeIngest{}
	h := NewHandler(Deps{Store: &fakeStore{}, Ingest: ing})

	// httptest requests come from 192.0.2.1.
	rec := serve(t, h, http.MethodPost, "/ingest/run")
	require.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/ingest/run", nil)
	req.RemoteAddr = "127.0.0.1:50000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, 1, ing.started)

	ing.busy = true
	req = httptest.NewRequest(http.MethodPost, "/ingest/run", nil)
	req.RemoteAddr = "[::1]:50000"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = serve(t, h, http.MethodGet, "/ingest/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var st ingest.Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.Equal(t, 6, st.LastPersisted)
	require.True(t, st.Running)
}

func TestMetricsEndpoint(t *testing.T) {
	m := telemetry.NewMetrics()
	h := NewHandler(Deps{Store: &fakeStore{ops: []domain.Opportunity{}}, Metrics: m})

	serve(t, h, http.MethodGet, "/data")
	serve(t, h, http.MethodGet, "/wp-login.php")

	srv := httptest.NewServer(h)
	defer srv.Close()
	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `route="/data"`)
	require.Contains(t, string(body), `route="other"`)
}

func TestCorsAllowsAnyOrigin(t *testing.T) {
	h := NewHandler(Deps{Store: &fakeStore{ops: []domain.Opportunity{}}})

	req := httptest.NewRequest(http.MethodOptions, "/data", nil)
	req.Header.Set("Origin", "https://dashboard.example.org")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://dashboard.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(t, h, http.MethodGet, "/data")
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRecoverReturnsEnvelope(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), RequestID, Recover)

	rec := serve(t, h, http.MethodGet, "/data")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var e APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	require.Equal(t, "internal_error", e.Error.Code)
}
