// Package infra holds the adapters behind the core interfaces: the LP
// engine, roster and workbook IO, the run journal, metrics sinks and the
// MQTT notifier.
package infra
