package metrics

import "github.com/obsidianstack/unifi-exporter/internal/unifi"

// Metric family names. Registration order in NewExporter follows this list.
const (
	MetricCPUUtilization    = "unifi_device_cpu_utilization_pct"
	MetricMemoryUtilization = "unifi_device_memory_utilization_pct"
	MetricUptime            = "unifi_device_uptime_seconds"
	MetricLoadAverage1Min   = "unifi_device_load_average_1min"
	MetricLoadAverage5Min   = "unifi_device_load_average_5min"
	MetricLoadAverage15Min  = "unifi_device_load_average_15min"
	MetricTxRate            = "unifi_device_tx_rate_bps"
	MetricRxRate            = "unifi_device_rx_rate_bps"
)

// deviceLabel is the single label key on every exported family.
const deviceLabel = "device"

// Observation is one (metric, device, value) triple produced by Map and
// consumed by Exporter.Record.
type Observation struct {
	Metric string
	Device string
	Value  float64
}

// Map flattens one device's statistics sample into observations.
//
// The mapping is fixed: one observation per reported metric, labeled with
// the device name. Fields the controller omitted (nil pointers) produce no
// observation — absence is normal, not an error. Integer fields are widened
// to float64; there is no other conversion and no aggregation.
//
// Map is pure: identical input yields an identical observation set, and
// nothing is recorded anywhere as a side effect.
func Map(device unifi.Device, stats *unifi.DeviceStatistics) []Observation {
	if stats == nil {
		return nil
	}

	obs := make([]Observation, 0, 8)
	add := func(metric string, v float64) {
		obs = append(obs, Observation{Metric: metric, Device: device.Name, Value: v})
	}

	if stats.CPUUtilizationPct != nil {
		add(MetricCPUUtilization, *stats.CPUUtilizationPct)
	}
	if stats.MemoryUtilizationPct != nil {
		add(MetricMemoryUtilization, *stats.MemoryUtilizationPct)
	}
	if stats.UptimeSec != nil {
		add(MetricUptime, float64(*stats.UptimeSec))
	}
	if stats.LoadAverage1Min != nil {
		add(MetricLoadAverage1Min, *stats.LoadAverage1Min)
	}
	if stats.LoadAverage5Min != nil {
		add(MetricLoadAverage5Min, *stats.LoadAverage5Min)
	}
	if stats.LoadAverage15Min != nil {
		add(MetricLoadAverage15Min, *stats.LoadAverage15Min)
	}
	if stats.Uplink != nil {
		if stats.Uplink.TxRateBps != nil {
			add(MetricTxRate, float64(*stats.Uplink.TxRateBps))
		}
		if stats.Uplink.RxRateBps != nil {
			add(MetricRxRate, float64(*stats.Uplink.RxRateBps))
		}
	}
	return obs
}
