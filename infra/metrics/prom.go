package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	coremetrics "github.com/kilianp07/courtsched/core/metrics"
)

// PromConfig selects where recorded metrics are delivered on Flush. A batch
// run does not live long enough to be scraped, so metrics go to a
// node-exporter textfile, a Pushgateway or both.
type PromConfig struct {
	Textfile    string `json:"textfile"`
	Pushgateway string `json:"pushgateway"`
	Job         string `json:"job"`
}

// PromSink records scheduling runs in Prometheus metrics.
type PromSink struct {
	cfg       PromConfig
	gatherer  *prometheus.Registry
	runs      *prometheus.CounterVec
	objective prometheus.Gauge
	matches   prometheus.Gauge
	dummy     prometheus.Gauge
	b2b       prometheus.Gauge
	solve     prometheus.Histogram
}

// NewPromSink registers run metrics on a fresh registry.
func NewPromSink(cfg PromConfig) (*PromSink, error) {
	return NewPromSinkWithRegistry(cfg, nil)
}

// NewPromSinkWithRegistry registers metrics on the provided registry. A nil
// registry is replaced by a new one.
func NewPromSinkWithRegistry(cfg PromConfig, reg *prometheus.Registry) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if cfg.Job == "" {
		cfg.Job = "courtsched"
	}
	s := &PromSink{
		cfg:      cfg,
		gatherer: reg,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtsched_runs_total",
			Help: "Scheduling runs by final status",
		}, []string{"status"}),
		objective: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtsched_objective_value",
			Help: "Objective value of the last schedule",
		}),
		matches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtsched_matches_scheduled",
			Help: "Matches placed by the last schedule",
		}),
		dummy: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtsched_dummy_slots_used",
			Help: "Dummy slots used by the last schedule",
		}),
		b2b: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtsched_back_to_back_total",
			Help: "Back-to-back occurrences in the last schedule",
		}),
		solve: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtsched_solve_seconds",
			Help:    "Wall-clock duration of scheduling runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}),
	}

	var err error
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	for _, g := range []*prometheus.Gauge{&s.objective, &s.matches, &s.dummy, &s.b2b} {
		if *g, err = register(reg, *g); err != nil {
			return nil, err
		}
	}
	if s.solve, err = register(reg, s.solve); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the collector already registered under the same
// descriptor when there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRun updates the run metrics. Schedule gauges are only updated for
// runs that produced a schedule.
func (s *PromSink) RecordRun(ev coremetrics.RunEvent) error {
	s.runs.WithLabelValues(ev.Status).Inc()
	s.solve.Observe(ev.Duration.Seconds())
	if ev.Scheduled > 0 {
		s.objective.Set(ev.Objective)
		s.matches.Set(float64(ev.Scheduled))
		s.dummy.Set(float64(ev.DummySlotsUsed))
		s.b2b.Set(float64(ev.BackToBack))
	}
	return nil
}

// Flush writes the textfile and pushes to the gateway when configured.
func (s *PromSink) Flush(ctx context.Context) error {
	if s.cfg.Textfile != "" {
		if err := prometheus.WriteToTextfile(s.cfg.Textfile, s.gatherer); err != nil {
			return fmt.Errorf("write textfile: %w", err)
		}
	}
	if s.cfg.Pushgateway != "" {
		if err := push.New(s.cfg.Pushgateway, s.cfg.Job).Gatherer(s.gatherer).PushContext(ctx); err != nil {
			return fmt.Errorf("push metrics: %w", err)
		}
	}
	return nil
}
