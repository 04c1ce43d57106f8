//go:build linux

package sysinfo

import (
	"os"

	"golang.org/x/sys/unix"
)

const defaultMeminfoPath = "/proc/meminfo"

// Sampler reads kernel counters and produces HostSnapshots. The zero
// value is not usable; construct with NewSampler.
type Sampler struct {
	meminfoPath string
	rootPath    string

	// Injection points for tests.
	hostname func() (string, error)
	sysinfo  func(*unix.Sysinfo_t) error
	statfs   func(string, *unix.Statfs_t) error
}

// NewSampler returns a Sampler reading the live kernel interfaces.
func NewSampler() *Sampler {
	return &Sampler{
		meminfoPath: defaultMeminfoPath,
		rootPath:    "/",
		hostname:    os.Hostname,
		sysinfo:     unix.Sysinfo,
		statfs:      unix.Statfs,
	}
}

// Sample captures one HostSnapshot. It fails fast: the first step that
// cannot be read classifies the whole sample and no partial snapshot is
// returned.
func (s *Sampler) Sample() (*HostSnapshot, error) {
	hostname, err := s.hostname()
	if err != nil {
		return nil, &SampleError{Kind: KindHostnameUnavailable, Message: "gethostname failed", Err: err}
	}

	var info unix.Sysinfo_t
	if err := s.sysinfo(&info); err != nil {
		return nil, &SampleError{Kind: KindSysinfoUnavailable, Message: "sysinfo syscall failed", Err: err}
	}

	mi, serr := s.readMeminfo()
	if serr != nil {
		return nil, serr
	}

	// Explicit conversions: the Sysinfo_t field widths differ across
	// linux architectures.
	counters := kernelCounters{
		Totalram:  uint64(info.Totalram),
		Freeram:   uint64(info.Freeram),
		Sharedram: uint64(info.Sharedram),
		Bufferram: uint64(info.Bufferram),
		Unit:      uint64(info.Unit),
		Uptime:    int64(info.Uptime),
	}

	var fs unix.Statfs_t
	if err := s.statfs(s.rootPath, &fs); err != nil {
		return nil, &SampleError{Kind: KindDiskStatsUnavailable, Message: "statfs on " + s.rootPath + " failed", Err: err}
	}

	uptime := counters.Uptime
	if uptime < 0 {
		uptime = 0
	}

	return &HostSnapshot{
		Hostname: hostname,
		Uptime:   uptime,
		Memory:   deriveMemory(counters, mi),
		Disk:     deriveDisk(uint64(fs.Blocks), uint64(fs.Bfree), uint64(fs.Bavail), uint64(fs.Frsize)),
	}, nil
}

func (s *Sampler) readMeminfo() (meminfoValues, *SampleError) {
	f, err := os.Open(s.meminfoPath)
	if err != nil {
		return meminfoValues{}, &SampleError{Kind: KindMeminfoUnavailable, Message: "open " + s.meminfoPath, Err: err}
	}
	defer f.Close()

	vals, complete := parseMeminfo(f)
	if !complete {
		return meminfoValues{}, &SampleError{Kind: KindMeminfoIncomplete, Message: "required fields missing from " + s.meminfoPath}
	}
	return vals, nil
}
