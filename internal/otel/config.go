// Package otel provides optional OpenTelemetry metrics and tracing for
// the daemon. Everything here is best-effort instrumentation: a disabled
// or failing exporter never changes a cycle's outcome.
package otel

// ExporterType selects where telemetry goes.
type ExporterType string

const (
	// ExporterNone disables export (no-op providers).
	ExporterNone ExporterType = "none"
	// ExporterStdout writes telemetry to stdout, useful for debugging.
	ExporterStdout ExporterType = "stdout"
	// ExporterOTLPGRPC exports via OTLP over gRPC.
	ExporterOTLPGRPC ExporterType = "otlp-grpc"
	// ExporterOTLPHTTP exports via OTLP over HTTP.
	ExporterOTLPHTTP ExporterType = "otlp-http"
)

// Config holds the shared exporter settings for metrics and traces.
type Config struct {
	ServiceName    string
	ServiceVersion string
	ExporterType   ExporterType
	OTLPEndpoint   string
	OTLPInsecure   bool
}

// DefaultConfig returns a configuration with export disabled.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:  "hostbeatd",
		ExporterType: ExporterNone,
	}
}

func (c *Config) enabled() bool {
	return c != nil && c.ExporterType != "" && c.ExporterType != ExporterNone
}
