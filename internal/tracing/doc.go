// Package tracing wires OpenTelemetry with the stdout exporter. Spans are
// no-ops until Init installs a provider, so callers instrument
// unconditionally.
package tracing
