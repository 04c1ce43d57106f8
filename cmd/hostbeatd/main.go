// Package main provides the hostbeatd daemon binary: it samples host
// vitals on a fixed interval and POSTs them to a collector until told
// to stop.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hostbeat/internal/config"
	"hostbeat/internal/daemon"
	"hostbeat/internal/health"
	"hostbeat/internal/notify"
	"hostbeat/internal/otel"
	"hostbeat/internal/report"
	"hostbeat/internal/sysinfo"
	"hostbeat/internal/transport"
)

// LSB init-script exit codes: 1 generic/unspecified error, 2 invalid
// arguments.
const (
	exitOK       = 0
	exitRuntime  = 1
	exitBadUsage = 2
)

const version = "1.0.0"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, config.Usage("hostbeatd"))
		notify.NewSystemd(slog.Default()).StartupFailure(exitBadUsage)
		return exitBadUsage
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))
	slog.SetDefault(logger)

	notifier := notify.NewSystemd(logger)

	client, err := transport.NewClient(cfg.ServerURL)
	if err != nil {
		logger.Error("http_client_init_failed", "err", err)
		return exitRuntime
	}

	ctx := context.Background()

	otelCfg := &otel.Config{
		ServiceName:    "hostbeatd",
		ServiceVersion: version,
		ExporterType:   otel.ExporterType(cfg.MetricsExporter),
		OTLPEndpoint:   cfg.OTLPEndpoint,
		OTLPInsecure:   cfg.OTLPInsecure,
	}
	metrics, err := otel.NewMetrics(ctx, otelCfg)
	if err != nil {
		logger.Error("metrics_init_failed", "err", err)
		return exitRuntime
	}
	defer shutdownTelemetry(metrics.Shutdown, logger, "metrics")

	traceCfg := *otelCfg
	traceCfg.ExporterType = otel.ExporterType(cfg.TraceExporter)
	tracer, err := otel.NewTracer(ctx, &traceCfg)
	if err != nil {
		logger.Error("tracer_init_failed", "err", err)
		return exitRuntime
	}
	defer shutdownTelemetry(tracer.Shutdown, logger, "tracer")

	healthCollector, err := health.NewCollector()
	if err != nil {
		// Self-observation is optional; the daemon still reports.
		logger.Warn("health_collector_unavailable", "err", err)
		healthCollector = nil
	}

	loop := daemon.New(
		daemon.Config{
			Interval: cfg.Interval(),
			Metrics:  metrics,
			Tracer:   tracer,
			Health:   healthCollector,
		},
		sysinfo.NewSampler(),
		report.NewEncoder(),
		client,
		notifier,
		logger,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)
	go loop.HandleSignals(sigCh)

	if err := loop.Run(ctx); err != nil {
		logger.Error("daemon_failed", "err", err)
		return exitRuntime
	}
	return exitOK
}

func shutdownTelemetry(shutdown func(context.Context) error, logger *slog.Logger, what string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("telemetry_shutdown_failed", "component", what, "err", err)
	}
}
