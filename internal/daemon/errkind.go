package daemon

import (
	"errors"

	"hostbeat/internal/report"
	"hostbeat/internal/sysinfo"
	"hostbeat/internal/transport"
)

// errKind extracts the classified kind from any pipeline error so log
// lines carry a stable, grep-able tag without per-call-site switches.
func errKind(err error) string {
	var serr *sysinfo.SampleError
	if errors.As(err, &serr) {
		return string(serr.Kind)
	}

	var eerr *report.EncodeError
	if errors.As(err, &eerr) {
		return string(eerr.Kind)
	}

	var terr *transport.Error
	if errors.As(err, &terr) {
		return string(terr.Kind)
	}

	return "unclassified"
}
