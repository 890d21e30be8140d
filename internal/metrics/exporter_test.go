package metrics

import (
	"strings"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// parseRender round-trips a rendered exposition back into metric families.
func parseRender(t *testing.T, text string) map[string]*dto.MetricFamily {
	t.Helper()
	var parser expfmt.TextParser
	mfs, err := parser.TextToMetricFamilies(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse rendered exposition: %v", err)
	}
	return mfs
}

// gaugeValue extracts the gauge value for (family, device) from parsed output.
func gaugeValue(t *testing.T, mfs map[string]*dto.MetricFamily, family, device string) (float64, bool) {
	t.Helper()
	mf, ok := mfs[family]
	if !ok {
		return 0, false
	}
	for _, m := range mf.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == "device" && l.GetValue() == device {
				return m.GetGauge().GetValue(), true
			}
		}
	}
	return 0, false
}

func TestNewExporter_RegistersFixedSet(t *testing.T) {
	e, err := NewExporter()
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}
	if len(e.gauges) != len(familySpecs) {
		t.Errorf("gauges = %d, want %d", len(e.gauges), len(familySpecs))
	}

	// An empty registry renders no series — the pre-first-poll state.
	text, err := e.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(text, "unifi_device") {
		t.Errorf("empty exporter rendered series:\n%s", text)
	}
}

func TestRecordAndRender_ThreeDevices(t *testing.T) {
	e, err := NewExporter()
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	for _, name := range []string{"ap-lobby", "ap-attic", "sw-rack"} {
		e.Record(Map(device(name), fullStats()))
	}

	text, err := e.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	// Exact literal line for one series, values straight from the input.
	if !strings.Contains(text, `unifi_device_cpu_utilization_pct{device="ap-lobby"} 12.5`) {
		t.Errorf("rendered output missing literal cpu series:\n%s", text)
	}

	mfs := parseRender(t, text)
	if len(mfs) != 8 {
		t.Fatalf("metric families = %d, want 8", len(mfs))
	}
	var series int
	for name, mf := range mfs {
		if got := len(mf.GetMetric()); got != 3 {
			t.Errorf("%s: series = %d, want 3", name, got)
		}
		series += len(mf.GetMetric())
	}
	if series != 24 {
		t.Errorf("total series = %d, want 24", series)
	}
	if v, ok := gaugeValue(t, mfs, MetricUptime, "sw-rack"); !ok || v != 93600 {
		t.Errorf("uptime{sw-rack} = %v, %v", v, ok)
	}
}

func TestRecord_UpsertsNotAccumulates(t *testing.T) {
	e, _ := NewExporter()
	d := device("ap-lobby")

	e.Record([]Observation{{Metric: MetricCPUUtilization, Device: d.Name, Value: 40}})
	e.Record([]Observation{{Metric: MetricCPUUtilization, Device: d.Name, Value: 15}})

	text, err := e.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	mfs := parseRender(t, text)
	if v, _ := gaugeValue(t, mfs, MetricCPUUtilization, "ap-lobby"); v != 15 {
		t.Errorf("cpu{ap-lobby} = %v, want 15 (gauge must overwrite, not sum)", v)
	}
}

func TestRender_StaleSeriesPersist(t *testing.T) {
	e, _ := NewExporter()

	e.Record(Map(device("ap-lobby"), fullStats()))
	e.Record(Map(device("ap-attic"), fullStats()))

	// Next cycle only ap-lobby reports; ap-attic vanished from the list.
	e.Record(Map(device("ap-lobby"), fullStats()))

	text, err := e.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	mfs := parseRender(t, text)
	if _, ok := gaugeValue(t, mfs, MetricCPUUtilization, "ap-attic"); !ok {
		t.Error("vanished device's series was evicted; last-known values must persist")
	}
}

func TestRecord_UnknownFamilyIsDropped(t *testing.T) {
	e, _ := NewExporter()
	e.Record([]Observation{{Metric: "unifi_device_bogus", Device: "ap-lobby", Value: 1}})

	text, err := e.Render()
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(text, "bogus") {
		t.Errorf("unregistered family leaked into render:\n%s", text)
	}
}
