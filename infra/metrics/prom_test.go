package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/courtsched/core/metrics"
)

func TestPromSinkRecordRun(t *testing.T) {
	sink, err := NewPromSink(PromConfig{})
	require.NoError(t, err)

	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{
		Status: "optimal", Objective: -2, Scheduled: 9, DummySlotsUsed: 1, BackToBack: 2, Duration: time.Second,
	}))
	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{Status: "infeasible", Duration: time.Second}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.runs.WithLabelValues("optimal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.runs.WithLabelValues("infeasible")))
	assert.Equal(t, -2.0, testutil.ToFloat64(sink.objective), "failed runs keep the last schedule gauges")
	assert.Equal(t, 9.0, testutil.ToFloat64(sink.matches))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.dummy))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.b2b))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.solve))
}

func TestPromSinkReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(PromConfig{}, reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(PromConfig{}, reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordRun(coremetrics.RunEvent{Status: "optimal"}))
	require.NoError(t, second.RecordRun(coremetrics.RunEvent{Status: "optimal"}))
	assert.Equal(t, 2.0, testutil.ToFloat64(first.runs.WithLabelValues("optimal")))
}

func TestPromSinkFlushTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courtsched.prom")
	sink, err := NewPromSink(PromConfig{Textfile: path})
	require.NoError(t, err)
	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{Status: "feasible", Scheduled: 3}))
	require.NoError(t, sink.Flush(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `courtsched_runs_total{status="feasible"} 1`)
	assert.Contains(t, string(data), "courtsched_matches_scheduled 3")
}

func TestPromSinkFlushPushgateway(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink, err := NewPromSink(PromConfig{Pushgateway: srv.URL, Job: "club"})
	require.NoError(t, err)
	require.NoError(t, sink.RecordRun(coremetrics.RunEvent{Status: "optimal"}))
	require.NoError(t, sink.Flush(context.Background()))
	require.Len(t, paths, 1)
	assert.True(t, strings.HasPrefix(paths[0], "PUT /metrics/job/club"), paths[0])
}
