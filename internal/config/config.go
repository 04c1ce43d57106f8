// Package config parses and validates the daemon's command line.
package config

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Config is the daemon's fixed runtime configuration. There is no
// reconfiguration while running; the loop reads this once at startup.
type Config struct {
	// ServerURL is the collector endpoint reports are POSTed to.
	ServerURL string

	// IntervalSeconds is the cycle period.
	IntervalSeconds int

	// Verbosity selects the log level, MinVerbosity..MaxVerbosity.
	Verbosity int

	// Telemetry export (disabled unless selected).
	MetricsExporter string
	TraceExporter   string
	OTLPEndpoint    string
	OTLPInsecure    bool
}

// Parse reads flags from args (without the program name). Both short and
// long spellings are accepted for the original surface: -s/--server-url,
// -i/--interval, -v/--verbosity.
func Parse(args []string) (*Config, error) {
	cfg := &Config{
		Verbosity:       DefaultVerbosity,
		MetricsExporter: DefaultMetricsExporter,
		TraceExporter:   DefaultTraceExporter,
	}

	fs := flag.NewFlagSet("hostbeatd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", "", "collector URL to POST reports to")
	fs.StringVar(&cfg.ServerURL, "server-url", "", "collector URL to POST reports to")
	fs.IntVar(&cfg.IntervalSeconds, "i", 0, "seconds between report cycles")
	fs.IntVar(&cfg.IntervalSeconds, "interval", 0, "seconds between report cycles")
	fs.IntVar(&cfg.Verbosity, "v", DefaultVerbosity, "log verbosity (0=error .. 3=debug)")
	fs.IntVar(&cfg.Verbosity, "verbosity", DefaultVerbosity, "log verbosity (0=error .. 3=debug)")
	fs.StringVar(&cfg.MetricsExporter, "metrics-exporter", DefaultMetricsExporter, "metrics exporter: none, stdout, otlp-grpc, otlp-http")
	fs.StringVar(&cfg.TraceExporter, "trace-exporter", DefaultTraceExporter, "trace exporter: none, stdout, otlp-grpc, otlp-http")
	fs.StringVar(&cfg.OTLPEndpoint, "otlp-endpoint", "", "OTLP collector endpoint (host:port)")
	fs.BoolVar(&cfg.OTLPInsecure, "otlp-insecure", false, "disable TLS for OTLP export")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the argument contract. Any error here means exit
// code 2 before the loop ever starts.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("argument -s/--server-url is required")
	}
	if c.IntervalSeconds < MinIntervalSeconds {
		return fmt.Errorf("argument -i/--interval must be >= %d second(s)", MinIntervalSeconds)
	}
	if c.Verbosity < MinVerbosity || c.Verbosity > MaxVerbosity {
		return fmt.Errorf("verbosity must be between %d and %d", MinVerbosity, MaxVerbosity)
	}
	return nil
}

// Interval returns the cycle period as a duration.
func (c *Config) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// LogLevel maps the numeric verbosity onto slog levels.
func (c *Config) LogLevel() slog.Level {
	switch c.Verbosity {
	case 0:
		return slog.LevelError
	case 1:
		return slog.LevelWarn
	case 3:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Usage is the one-line synopsis printed on argument errors.
func Usage(prog string) string {
	return fmt.Sprintf("Usage: %s -s/--server-url <URL> -i/--interval <seconds> [-v/--verbosity <0-3>]", prog)
}
