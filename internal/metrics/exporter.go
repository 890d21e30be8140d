package metrics

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// familySpec pins down the fixed metric set. Families are registered once,
// in this order, at construction; Record only ever upserts values.
var familySpecs = []struct {
	name string
	help string
}{
	{MetricCPUUtilization, "CPU usage (%)"},
	{MetricMemoryUtilization, "Memory usage (%)"},
	{MetricUptime, "Uptime in seconds"},
	{MetricLoadAverage1Min, "Load avg over 1min"},
	{MetricLoadAverage5Min, "Load avg over 5min"},
	{MetricLoadAverage15Min, "Load avg over 15min"},
	{MetricTxRate, "Uplink TX rate in bps"},
	{MetricRxRate, "Uplink RX rate in bps"},
}

// Exporter accumulates device observations into gauges and renders them in
// the Prometheus text exposition format.
//
// Gauges are overwritten per (metric, device) pair on each Record call —
// values never accumulate across cycles. A device that stops appearing in
// observations keeps its last recorded series; stale series are not evicted.
// That mirrors how the controller treats briefly-offline devices and keeps
// "device vanished" visible as a frozen value rather than a gap.
type Exporter struct {
	registry *prometheus.Registry
	gauges   map[string]*prometheus.GaugeVec
}

// NewExporter builds a registry with the full fixed metric set registered.
func NewExporter() (*Exporter, error) {
	registry := prometheus.NewRegistry()
	gauges := make(map[string]*prometheus.GaugeVec, len(familySpecs))

	for _, spec := range familySpecs {
		g := prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: spec.name, Help: spec.help},
			[]string{deviceLabel},
		)
		if err := registry.Register(g); err != nil {
			return nil, fmt.Errorf("metrics: register %s: %w", spec.name, err)
		}
		gauges[spec.name] = g
	}

	return &Exporter{registry: registry, gauges: gauges}, nil
}

// Record upserts the value for each observation's (metric, device) series.
// Callers hand in one batch per device per cycle; recording the same series
// twice in a batch simply keeps the last value.
func (e *Exporter) Record(obs []Observation) {
	for _, o := range obs {
		g, ok := e.gauges[o.Metric]
		if !ok {
			// Map only emits the registered set; anything else is a bug.
			slog.Warn("metrics: dropping observation for unregistered family", "metric", o.Metric)
			continue
		}
		g.WithLabelValues(o.Device).Set(o.Value)
	}
}

// Render serializes the current gauge values to the text exposition format.
// Families come out of Gather sorted by name, so output is deterministic
// for a given value set.
func (e *Exporter) Render() (string, error) {
	families, err := e.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("metrics: gather: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return "", fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return buf.String(), nil
}
