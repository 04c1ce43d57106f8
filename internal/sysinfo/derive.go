package sysinfo

// kernelCounters are the raw sysinfo(2) fields the derivation consumes.
// Totalram, Freeram, Sharedram and Bufferram are counts of Unit-sized
// blocks; Unit is the kernel's memory unit in bytes (usually 1).
type kernelCounters struct {
	Totalram  uint64
	Freeram   uint64
	Sharedram uint64
	Bufferram uint64
	Unit      uint64
	Uptime    int64
}

// deriveMemory turns raw kernel counters plus the parsed meminfo fields
// into KiB figures the way free(1) reports them.
//
// The available/cached/used conversions mix Unit-scaled block counts with
// kB-from-file values divided by 1024 at the end; the result is exact only
// when Unit == 1. This matches the arithmetic the collector has always
// shipped and downstream dashboards are calibrated against it, so it is
// kept as is rather than re-derived. See DESIGN.md.
func deriveMemory(k kernelCounters, mi meminfoValues) MemoryStats {
	unit := k.Unit
	if unit == 0 {
		unit = 1
	}

	available := mi.AvailableKB * 1024 / unit
	cached := mi.CachedKB * 1024 / unit
	cached += k.Bufferram
	cached += mi.ReclaimableKB * 1024 / unit
	cachedPlusFree := cached + k.Freeram

	var used uint64
	if k.Totalram > cachedPlusFree {
		used = (k.Totalram - cachedPlusFree) / 1024
	}

	return MemoryStats{
		Total:     k.Totalram * unit / 1024,
		Used:      used,
		Free:      k.Freeram * unit / 1024,
		Shared:    k.Sharedram / 1024,
		Cached:    cached / 1024,
		Available: available / 1024,
	}
}

// deriveDisk turns statfs block counts into KiB figures the way df(1)
// reports them. A zero-block filesystem yields all zeroes instead of a
// division by zero.
func deriveDisk(blocks, bfree, bavail, frsize uint64) DiskStats {
	total := blocks * frsize / 1024
	free := bfree * frsize / 1024
	avail := bavail * frsize / 1024
	used := total - free

	var pct float64
	if total > 0 {
		pct = float64(used) * 100.0 / float64(total)
	}

	return DiskStats{
		Total:        total,
		Free:         free,
		Used:         used,
		Available:    avail,
		UsagePercent: pct,
	}
}
