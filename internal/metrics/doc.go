// Package metrics turns device statistics into Prometheus gauge series.
//
// Map (mapper.go) is the pure flattening step: one Observation per reported
// statistic, labeled by device name, absent fields skipped.
//
// Exporter (exporter.go) owns a prometheus.Registry with the fixed
// eight-family gauge set registered at construction. Record upserts values;
// Render encodes the current state with the expfmt text encoder. The
// rendered string — not the registry — is what gets published to the
// snapshot cache, so scrapes never race a half-updated registry.
package metrics
