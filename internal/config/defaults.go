package config

// Default and boundary values for the daemon's command line.
const (
	MinIntervalSeconds = 1

	MinVerbosity     = 0
	MaxVerbosity     = 3
	DefaultVerbosity = 2 // info

	DefaultMetricsExporter = "none"
	DefaultTraceExporter   = "none"
)
