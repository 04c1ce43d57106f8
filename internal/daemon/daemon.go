// Package daemon runs the sample-encode-deliver loop and owns the
// process lifecycle around it.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"hostbeat/internal/health"
	"hostbeat/internal/notify"
	"hostbeat/internal/otel"
	"hostbeat/internal/sysinfo"
)

// Sampler produces one host snapshot per cycle.
type Sampler interface {
	Sample() (*sysinfo.HostSnapshot, error)
}

// Encoder turns a snapshot into the wire payload.
type Encoder interface {
	Encode(*sysinfo.HostSnapshot) ([]byte, error)
}

// Poster delivers one payload; nil means the collector accepted it.
type Poster interface {
	Post(ctx context.Context, payload []byte) error
	ServerURL() string
}

// Config holds the loop's fixed parameters and optional collaborators.
type Config struct {
	Interval time.Duration

	// Optional; nil disables the concern.
	Metrics *otel.Metrics
	Tracer  *otel.Tracer
	Health  *health.Collector
}

// Loop drives repeated cycles until a termination signal is observed.
// The shutdown flag is written by the signal goroutine and polled at the
// top of each iteration; an in-flight cycle is never interrupted.
type Loop struct {
	cfg      Config
	sampler  Sampler
	encoder  Encoder
	poster   Poster
	notifier notify.Notifier
	log      *slog.Logger

	stopping atomic.Bool
	wake     chan struct{}
	wakeOnce sync.Once

	cycles atomic.Int64
}

// New assembles a Loop. All collaborators except Config's optional ones
// are required.
func New(cfg Config, sampler Sampler, encoder Encoder, poster Poster, notifier notify.Notifier, log *slog.Logger) *Loop {
	return &Loop{
		cfg:      cfg,
		sampler:  sampler,
		encoder:  encoder,
		poster:   poster,
		notifier: notifier,
		log:      log,
		wake:     make(chan struct{}),
	}
}

// RequestStop flips the shutdown flag and wakes a sleeping loop. Safe to
// call from any goroutine, any number of times.
func (l *Loop) RequestStop() {
	l.stopping.Store(true)
	l.wakeOnce.Do(func() { close(l.wake) })
}

// Cycles reports how many cycles have run, successful or not.
func (l *Loop) Cycles() int64 {
	return l.cycles.Load()
}

// Run executes cycles until RequestStop is observed or ctx is cancelled.
// It notifies ready on entry and stopping exactly once on exit.
func (l *Loop) Run(ctx context.Context) error {
	l.notifier.Ready()
	l.log.Info("daemon_started", "target", l.poster.ServerURL(), "interval", l.cfg.Interval)

	for !l.stopping.Load() && ctx.Err() == nil {
		l.runCycle(ctx)
		l.keepalive()
		l.sleep(ctx)
	}

	l.notifier.Stopping()
	l.log.Info("daemon_stopped", "cycles", l.cycles.Load())
	return nil
}

func (l *Loop) runCycle(ctx context.Context) {
	start := time.Now()
	l.cycles.Add(1)

	ctx, span := l.cfg.Tracer.Start(ctx, "cycle")
	defer span.End()

	ok := l.sampleEncodeDeliver(ctx)

	l.cfg.Metrics.RecordCycle(ctx, ok, time.Since(start))
}

func (l *Loop) sampleEncodeDeliver(ctx context.Context) bool {
	_, span := l.cfg.Tracer.Start(ctx, "sample")
	snap, err := l.sampler.Sample()
	span.End()
	if err != nil {
		l.log.Error("sample_failed", "kind", errKind(err), "err", err)
		l.cfg.Metrics.RecordFailure(ctx, "sample", errKind(err))
		return false
	}

	_, span = l.cfg.Tracer.Start(ctx, "encode")
	payload, err := l.encoder.Encode(snap)
	span.End()
	if err != nil {
		l.log.Error("encode_failed", "kind", errKind(err), "err", err)
		l.cfg.Metrics.RecordFailure(ctx, "encode", errKind(err))
		return false
	}

	l.log.Debug("posting_report", "target", l.poster.ServerURL())
	l.log.Debug("report_payload", "payload", string(payload))

	postStart := time.Now()
	_, span = l.cfg.Tracer.Start(ctx, "deliver")
	err = l.poster.Post(ctx, payload)
	span.End()
	l.cfg.Metrics.RecordDelivery(ctx, err == nil, time.Since(postStart))
	if err != nil {
		l.log.Error("delivery_failed", "kind", errKind(err), "err", err)
		l.cfg.Metrics.RecordFailure(ctx, "deliver", errKind(err))
		return false
	}

	l.log.Info("report_delivered", "bytes", len(payload))
	return true
}

// keepalive tells the service manager the loop is alive, with the
// daemon's own vitals at debug level.
func (l *Loop) keepalive() {
	l.notifier.Watchdog()

	if l.cfg.Health == nil {
		return
	}
	stats := l.cfg.Health.Collect()
	l.log.Debug("keepalive",
		"rss_bytes", stats.RSSBytes,
		"cpu_percent", stats.CPUPercent,
		"open_fds", stats.OpenFDs,
		"goroutines", stats.Goroutines,
	)
}

// sleep blocks for the configured interval. A stop request or context
// cancellation ends the sleep early; the flag is still only acted on at
// the top of the next iteration.
func (l *Loop) sleep(ctx context.Context) {
	timer := time.NewTimer(l.cfg.Interval)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-l.wake:
	case <-ctx.Done():
	}
}
