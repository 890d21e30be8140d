package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/obsidianstack/unifi-exporter/internal/metrics"
	"github.com/obsidianstack/unifi-exporter/internal/session"
	"github.com/obsidianstack/unifi-exporter/internal/snapshot"
	"github.com/obsidianstack/unifi-exporter/internal/unifi"
)

// ControllerClient is the slice of the unifi client the poller needs.
// Abstracted so tests can drive the cycle state machine with a fake.
type ControllerClient interface {
	CheckLiveness(ctx context.Context) error
	Devices(ctx context.Context, siteID string) ([]unifi.Device, error)
	DeviceStatistics(ctx context.Context, siteID, deviceID string) (*unifi.DeviceStatistics, error)
}

// Options configures a Poller.
type Options struct {
	// Interval is the pause between cycles. Must be positive.
	Interval time.Duration

	// Concurrency bounds the per-cycle statistics fetch fan-out.
	// 1 fetches sequentially; values below 1 are treated as 1.
	Concurrency int
}

// Poller runs the recurring poll cycle: discover devices, fetch each
// device's statistics, map and record them, render, and publish the result
// to the snapshot cache. Exactly one cycle is in flight at a time.
//
// Failure containment follows three rings: a device failure skips that
// device, a cycle failure skips that cycle (the cache keeps the previous
// snapshot), and nothing short of startup ever escalates to process exit.
type Poller struct {
	client   ControllerClient
	session  *session.Session
	exporter *metrics.Exporter
	cache    *snapshot.Cache

	concurrency int

	mu       sync.Mutex
	interval time.Duration
}

// New wires a Poller. Prime must succeed before Run is started.
func New(client ControllerClient, sess *session.Session, exp *metrics.Exporter, cache *snapshot.Cache, o Options) *Poller {
	concurrency := o.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Poller{
		client:      client,
		session:     sess,
		exporter:    exp,
		cache:       cache,
		concurrency: concurrency,
		interval:    o.Interval,
	}
}

// Prime validates the token against the controller and runs first-time site
// discovery. A failure here is the one fatal error in the system: with no
// site there is nothing useful to serve, so the caller exits before binding
// the listen socket.
func (p *Poller) Prime(ctx context.Context) error {
	if err := p.client.CheckLiveness(ctx); err != nil {
		return fmt.Errorf("poller: controller liveness check: %w", err)
	}
	if err := p.session.EnsureReady(ctx); err != nil {
		return fmt.Errorf("poller: initial discovery: %w", err)
	}
	return nil
}

// SetInterval changes the pause between cycles. Takes effect after the
// sleep currently in progress. Non-positive values are ignored.
func (p *Poller) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	if d != p.interval {
		slog.Info("poller: interval updated", "interval", d)
		p.interval = d
	}
	p.mu.Unlock()
}

// Interval returns the current pause between cycles.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

// Run executes cycles until ctx is cancelled. The first cycle starts
// immediately; each subsequent cycle starts after the configured interval,
// unconditionally — failed cycles sleep the same as successful ones.
func (p *Poller) Run(ctx context.Context) {
	for {
		p.runCycle(ctx)

		timer := time.NewTimer(p.Interval())
		select {
		case <-ctx.Done():
			timer.Stop()
			slog.Info("poller: stopped")
			return
		case <-timer.C:
		}
	}
}

// runCycle executes one full cycle. Every failure path logs and returns;
// the cache is only touched on the publish path at the very end.
func (p *Poller) runCycle(ctx context.Context) {
	start := time.Now()

	// Session readiness is re-checked every cycle. Prime made the first
	// pass fatal; from here on a discovery failure just skips the cycle.
	if err := p.session.EnsureReady(ctx); err != nil {
		slog.Error("poller: session not ready, skipping cycle", "err", err)
		return
	}
	siteID, ok := p.session.SiteID()
	if !ok {
		// EnsureReady returned nil, so this cannot happen.
		slog.Error("poller: session reported ready without a site, skipping cycle")
		return
	}

	devices, err := p.discover(ctx, siteID)
	if err != nil {
		slog.Error("poller: device discovery failed, skipping cycle", "err", err)
		return
	}

	slog.Info("poller: discovered devices", "count", len(devices))
	for _, d := range devices {
		slog.Debug("poller: device", "name", d.Name, "model", d.Model, "state", d.State)
	}

	results := p.fetchAll(ctx, siteID, devices)

	// Mapping and recording run single-threaded on the collected results,
	// so registry writes never race the fetch fan-out.
	var observations int
	var failed int
	for _, res := range results {
		if res.err != nil {
			failed++
			slog.Warn("poller: device statistics fetch failed, skipping device",
				"device", res.device.Name, "err", res.err)
			continue
		}
		obs := metrics.Map(res.device, res.stats)
		p.exporter.Record(obs)
		observations += len(obs)
	}

	if observations == 0 {
		// Nothing succeeded this cycle. Keep the previous snapshot rather
		// than publishing an empty render over last known good data.
		slog.Error("poller: no device produced observations, keeping previous snapshot",
			"devices", len(devices), "failed", failed)
		return
	}

	text, err := p.exporter.Render()
	if err != nil {
		slog.Error("poller: render failed, keeping previous snapshot", "err", err)
		return
	}
	p.cache.Publish(text)

	slog.Info("poller: cycle complete",
		"duration", time.Since(start).Round(time.Millisecond),
		"devices", len(devices),
		"failed", failed,
		"observations", observations,
	)
}

// discover lists the site's devices, handling auth expiry in place.
//
// On a 401/403 the token is revalidated with exactly one liveness probe.
// If the probe passes, the rejection was transient and the list is retried
// once; if it fails, the session is reset so the next cycle re-discovers
// from scratch. Either way the cycle never loops: one probe, at most one
// retry, then sleep.
func (p *Poller) discover(ctx context.Context, siteID string) ([]unifi.Device, error) {
	devices, err := p.client.Devices(ctx, siteID)
	if err == nil {
		return devices, nil
	}
	if !unifi.IsAuthExpired(err) {
		return nil, err
	}

	slog.Warn("poller: device list rejected, revalidating token", "err", err)
	if liveErr := p.client.CheckLiveness(ctx); liveErr != nil {
		p.session.Reset()
		return nil, fmt.Errorf("poller: token revalidation failed: %w", liveErr)
	}

	devices, err = p.client.Devices(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("poller: device list retry after revalidation: %w", err)
	}
	slog.Info("poller: device list recovered after revalidation")
	return devices, nil
}

// deviceResult pairs a device with its fetched statistics or fetch error.
type deviceResult struct {
	device unifi.Device
	stats  *unifi.DeviceStatistics
	err    error
}

// fetchAll fetches statistics for every device with a bounded fan-out.
// Results come back in device-list order; a failed fetch is carried as a
// per-device error, never as a cycle failure.
func (p *Poller) fetchAll(ctx context.Context, siteID string, devices []unifi.Device) []deviceResult {
	results := make([]deviceResult, len(devices))

	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i, d := range devices {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, d unifi.Device) {
			defer wg.Done()
			defer func() { <-sem }()
			stats, err := p.client.DeviceStatistics(ctx, siteID, d.ID)
			results[i] = deviceResult{device: d, stats: stats, err: err}
		}(i, d)
	}
	wg.Wait()

	return results
}
