package metrics

import (
	"context"
	"time"
)

// RunEvent summarises one scheduling run.
type RunEvent struct {
	RunID          string
	Status         string
	Objective      float64
	Players        int
	Groups         int
	Matches        int
	Scheduled      int
	DummySlotsUsed int
	BackToBack     int
	Nodes          int
	Duration       time.Duration
	Time           time.Time
}

// MetricsSink records scheduling runs.
type MetricsSink interface {
	RecordRun(ev RunEvent) error
}

// Flusher is implemented by sinks that deliver recorded data on demand.
type Flusher interface {
	Flush(ctx context.Context) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordRun(RunEvent) error    { return nil }
func (NopSink) Flush(context.Context) error { return nil }
