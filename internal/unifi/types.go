package unifi

import "time"

// Site is one entry in the controller's site collection. Devices are
// namespaced under a site; this exporter resolves the first site once and
// uses it for the lifetime of the process.
type Site struct {
	ID                string `json:"id"`
	InternalReference string `json:"internalReference"`
	Name              string `json:"name"`
}

// sitesResponse is the paginated envelope around the site collection.
type sitesResponse struct {
	Offset     int    `json:"offset"`
	Limit      int    `json:"limit"`
	Count      int    `json:"count"`
	TotalCount int    `json:"totalCount"`
	Data       []Site `json:"data"`
}

// Device is one adopted device as returned by the device-list endpoint.
// ID is the stable identity used for statistics lookups; Name is the
// human-assigned label that ends up on the exported metric series.
type Device struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Model      string   `json:"model"`
	State      string   `json:"state"`
	IPAddress  string   `json:"ipAddress"`
	MACAddress string   `json:"macAddress"`
	Features   []string `json:"features"`
	Interfaces []string `json:"interfaces"`
}

// devicesResponse is the paginated envelope around the device list.
type devicesResponse struct {
	Offset     int      `json:"offset"`
	Limit      int      `json:"limit"`
	Count      int      `json:"count"`
	TotalCount int      `json:"totalCount"`
	Data       []Device `json:"data"`
}

// DeviceStatistics is the latest statistics sample for one device.
//
// Every numeric field is a pointer because the controller omits fields the
// device does not report (a gateway has no radio stats, a fresh adoption has
// no load averages yet). A nil field means "not reported this sample" and is
// skipped during mapping, never treated as zero or as an error.
type DeviceStatistics struct {
	UptimeSec            *int64            `json:"uptimeSec"`
	LastHeartbeatAt      *time.Time        `json:"lastHeartbeatAt"`
	NextHeartbeatAt      *time.Time        `json:"nextHeartbeatAt"`
	LoadAverage1Min      *float64          `json:"loadAverage1Min"`
	LoadAverage5Min      *float64          `json:"loadAverage5Min"`
	LoadAverage15Min     *float64          `json:"loadAverage15Min"`
	CPUUtilizationPct    *float64          `json:"cpuUtilizationPct"`
	MemoryUtilizationPct *float64          `json:"memoryUtilizationPct"`
	Uplink               *UplinkStatistics `json:"uplink"`
}

// UplinkStatistics is the uplink throughput block within DeviceStatistics.
type UplinkStatistics struct {
	TxRateBps *int64 `json:"txRateBps"`
	RxRateBps *int64 `json:"rxRateBps"`
}
