// Package metrics defines how scheduling runs are reported to observability
// backends. A MetricsSink records one RunEvent per run; sinks that buffer,
// such as a Prometheus textfile or pushgateway, also implement Flusher.
// Sinks are created from configuration through the factory registry and are
// combined with NewMultiSink when several are configured.
package metrics
