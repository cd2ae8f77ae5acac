package metrics

import (
	"fmt"

	"github.com/kilianp07/courtsched/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a sink factory under name.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// MustRegisterMetricsSink is RegisterMetricsSink for init functions. It
// panics when name is taken.
func MustRegisterMetricsSink(name string, f factory.Factory[MetricsSink]) {
	sinkRegistry.MustRegister(name, f)
}

// SinkTypes lists the registered sink types.
func SinkTypes() []string {
	return sinkRegistry.Names()
}

// NewMetricsSink builds the sinks listed in cfgs. No entries yields a
// NopSink and several entries are combined in a MultiSink that records every
// run to each of them.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	sinks := make([]MetricsSink, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %d (%s): %w", i, c.Type, err)
		}
		sinks = append(sinks, s)
	}
	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return NewMultiSink(sinks...), nil
	}
}
