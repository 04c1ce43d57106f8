package sysinfo

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// meminfoValues are the three /proc/meminfo fields the memory derivation
// needs, all in kB as the kernel reports them.
type meminfoValues struct {
	CachedKB      uint64
	AvailableKB   uint64
	ReclaimableKB uint64
}

// parseMeminfo scans meminfo-format lines for Cached, MemAvailable and
// SReclaimable. Fields may appear in any order, interleaved with lines we
// do not care about; scanning stops as soon as all three have been seen.
// The second return is false when the input ended before all three labels
// were found.
func parseMeminfo(r io.Reader) (meminfoValues, bool) {
	var vals meminfoValues

	remaining := 3
	scanner := bufio.NewScanner(r)
	for remaining > 0 && scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "Cached:"):
			if v, ok := meminfoFieldKB(line); ok {
				vals.CachedKB = v
				remaining--
			}
		case strings.HasPrefix(line, "MemAvailable:"):
			if v, ok := meminfoFieldKB(line); ok {
				vals.AvailableKB = v
				remaining--
			}
		case strings.HasPrefix(line, "SReclaimable:"):
			if v, ok := meminfoFieldKB(line); ok {
				vals.ReclaimableKB = v
				remaining--
			}
		}
	}

	return vals, remaining == 0
}

// meminfoFieldKB extracts the numeric value from a "Label: 12345 kB" line.
func meminfoFieldKB(line string) (uint64, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, false
	}
	v, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
