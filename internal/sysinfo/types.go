// Package sysinfo samples host vitals (hostname, uptime, memory, root
// filesystem usage) into a point-in-time snapshot.
package sysinfo

// MemoryStats holds memory figures in KiB, matching the output of free(1).
type MemoryStats struct {
	Total     uint64
	Used      uint64
	Free      uint64
	Shared    uint64
	Cached    uint64
	Available uint64
}

// DiskStats holds root-filesystem figures in KiB, matching df(1).
type DiskStats struct {
	Total        uint64
	Free         uint64
	Used         uint64
	Available    uint64
	UsagePercent float64
}

// HostSnapshot is one complete set of host metrics captured at a single
// point in time. Snapshots are rebuilt every cycle and never retained.
type HostSnapshot struct {
	Hostname string
	Uptime   int64
	Memory   MemoryStats
	Disk     DiskStats
}
