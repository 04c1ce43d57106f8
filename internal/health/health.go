// Package health collects the daemon's own process statistics so the
// keepalive log line shows whether the agent itself is misbehaving.
package health

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a best-effort self snapshot. Fields that cannot be read stay
// zero; self-observation must never fail a cycle.
type Stats struct {
	RSSBytes   uint64
	VMSBytes   uint64
	CPUPercent float64
	OpenFDs    int32
	Goroutines int
}

// Collector reads stats for the current process.
type Collector struct {
	proc *process.Process
}

// NewCollector binds to the running process.
func NewCollector() (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Collector{proc: proc}, nil
}

// Collect returns the current self stats.
func (c *Collector) Collect() Stats {
	stats := Stats{Goroutines: runtime.NumGoroutine()}

	if mem, err := c.proc.MemoryInfo(); err == nil && mem != nil {
		stats.RSSBytes = mem.RSS
		stats.VMSBytes = mem.VMS
	}
	if pct, err := c.proc.CPUPercent(); err == nil {
		stats.CPUPercent = pct
	}
	if fds, err := c.proc.NumFDs(); err == nil {
		stats.OpenFDs = fds
	}

	return stats
}
