package sysinfo

import "fmt"

// SampleKind identifies which sampling step failed. The set is closed:
// callers branch on the kind for logging, never on message text.
type SampleKind string

const (
	KindHostnameUnavailable  SampleKind = "hostname_unavailable"
	KindSysinfoUnavailable   SampleKind = "sysinfo_unavailable"
	KindDiskStatsUnavailable SampleKind = "disk_stats_unavailable"
	KindMeminfoUnavailable   SampleKind = "meminfo_unavailable"
	KindMeminfoIncomplete    SampleKind = "meminfo_incomplete"
)

// SampleError is the classified failure returned by Sampler.Sample.
type SampleError struct {
	Kind    SampleKind
	Message string
	Err     error
}

func (e *SampleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *SampleError) Unwrap() error {
	return e.Err
}
