package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"rfpwatch/internal/config"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerJSON(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	logger, err := SetupLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	slog.Warn("shown", "source", "rfpdb")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["msg"])
	require.Equal(t, "rfpdb", line["source"])
}

func TestSetupLoggerRejectsBadInput(t *testing.T) {
	_, err := SetupLogger(config.LoggingConfig{Level: "loud"}, io.Discard)
	require.Error(t, err)
	_, err = SetupLogger(config.LoggingConfig{Level: "info", Format: "xml"}, io.Discard)
	require.Error(t, err)
}

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics()

	m.ObserveSource("rfpdb", 5, time.Second, false)
	m.ObserveSource("rfpdb", 0, time.Second, true)
	m.ObserveIngest("ok", 6)
	m.ObserveHTTP("/data", 200)
	m.ObserveCache(true)

	require.Equal(t, 5.0, testutil.ToFloat64(m.sourceFragments.WithLabelValues("rfpdb")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.sourceFailures.WithLabelValues("rfpdb")))
	require.Equal(t, 6.0, testutil.ToFloat64(m.generationSize))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/data", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Contains(t, rec.Body.String(), "rfpwatch_source_fragments_total")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveSource("x", 1, time.Millisecond, true)
	m.ObserveIngest("error", 0)
	m.ObserveHTTP("/", 500)
	m.ObserveCache(false)
}

func TestSetupTracingWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "", "rfpwatch")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
