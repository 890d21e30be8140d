package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/obsidianstack/unifi-exporter/internal/config"
	"github.com/obsidianstack/unifi-exporter/internal/metrics"
	"github.com/obsidianstack/unifi-exporter/internal/poller"
	"github.com/obsidianstack/unifi-exporter/internal/server"
	"github.com/obsidianstack/unifi-exporter/internal/session"
	"github.com/obsidianstack/unifi-exporter/internal/snapshot"
	"github.com/obsidianstack/unifi-exporter/internal/unifi"
)

func main() {
	configPath := flag.String("config", "", "path to optional config file")
	endpoint := flag.String("endpoint", "", "controller endpoint URL (e.g. https://192.168.3.254)")
	token := flag.String("token", "", "controller API token (prefer the UNIFI_API_TOKEN env var)")
	listen := flag.String("listen", "", "address to serve metrics on (host:port)")
	interval := flag.Duration("interval", 0, "pause between poll cycles (e.g. 5m)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("unifi-exporter starting", "config", *configPath)

	fl := config.Flags{
		Endpoint: *endpoint,
		Token:    *token,
		Listen:   *listen,
		Interval: *interval,
	}
	cfg, err := config.Resolve(*configPath, fl)
	if err != nil {
		slog.Error("failed to resolve config", "err", err)
		os.Exit(1)
	}
	slog.Info("config resolved",
		"endpoint", cfg.Controller.Endpoint,
		"poll_interval", cfg.Poll.Interval,
		"concurrency", cfg.Poll.Concurrency,
		"listen", cfg.Listen.Address,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := unifi.New(unifi.Options{
		Endpoint:           cfg.Controller.Endpoint,
		APIToken:           cfg.Controller.APIToken,
		Timeout:            cfg.Controller.Timeout,
		InsecureSkipVerify: cfg.Controller.InsecureSkipVerify,
	})
	if err != nil {
		slog.Error("failed to build controller client", "err", err)
		os.Exit(1)
	}

	exporter, err := metrics.NewExporter()
	if err != nil {
		slog.Error("failed to build metric registry", "err", err)
		os.Exit(1)
	}

	sess := session.New(client)
	cache := snapshot.New()
	p := poller.New(client, sess, exporter, cache, poller.Options{
		Interval:    cfg.Poll.Interval,
		Concurrency: cfg.Poll.Concurrency,
	})

	// Startup gate: token must be accepted and the site discoverable before
	// the scrape endpoint is bound. With no site there is nothing to serve.
	if err := p.Prime(ctx); err != nil {
		slog.Error("startup validation against controller failed", "err", err)
		os.Exit(1)
	}

	// Watch config file for hot-reload; only the poll interval is applied
	// live, everything else needs a restart.
	if *configPath != "" {
		go func() {
			if err := config.Watch(ctx, *configPath, fl, func(updated *config.Config) {
				p.SetInterval(updated.Poll.Interval)
			}); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	go p.Run(ctx)

	httpSrv := &http.Server{
		Addr:    cfg.Listen.Address,
		Handler: server.New(cache, sess),
	}
	go func() {
		slog.Info("serving metrics", "address", cfg.Listen.Address, "path", "/metrics")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("unifi-exporter shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown", "err", err)
	}
}
