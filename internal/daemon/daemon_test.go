package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hostbeat/internal/report"
	"hostbeat/internal/sysinfo"
	"hostbeat/internal/transport"
)

type fakeSampler struct {
	mu     sync.Mutex
	calls  int
	failOn map[int]*sysinfo.SampleError
	onCall func(n int)
}

func (f *fakeSampler) Sample() (*sysinfo.HostSnapshot, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(n)
	}
	if serr, ok := f.failOn[n]; ok {
		return nil, serr
	}
	return &sysinfo.HostSnapshot{Hostname: "test-host", Uptime: int64(n)}, nil
}

func (f *fakeSampler) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePoster struct {
	mu       sync.Mutex
	payloads [][]byte
	err      error
}

func (f *fakePoster) Post(_ context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, append([]byte(nil), payload...))
	return nil
}

func (f *fakePoster) ServerURL() string { return "http://collector.test/report" }

func (f *fakePoster) Payloads() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.payloads))
	copy(out, f.payloads)
	return out
}

type fakeNotifier struct {
	ready    atomic.Int64
	watchdog atomic.Int64
	stopping atomic.Int64
	failure  atomic.Int64
}

func (f *fakeNotifier) Ready()               { f.ready.Add(1) }
func (f *fakeNotifier) Watchdog()            { f.watchdog.Add(1) }
func (f *fakeNotifier) Stopping()            { f.stopping.Add(1) }
func (f *fakeNotifier) StartupFailure(code int) { f.failure.Add(1) }

func newTestLoop(sampler Sampler, poster Poster, notifier *fakeNotifier) *Loop {
	return New(
		Config{Interval: time.Millisecond},
		sampler,
		report.NewEncoder(),
		poster,
		notifier,
		slog.Default(),
	)
}

func runLoop(t *testing.T, l *Loop) (wait func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Run(context.Background())
	}()
	return func() {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("loop did not stop")
		}
	}
}

func TestLoopCyclesUntilStopped(t *testing.T) {
	sampler := &fakeSampler{}
	poster := &fakePoster{}
	notifier := &fakeNotifier{}
	loop := newTestLoop(sampler, poster, notifier)

	// Stop after the third cycle has sampled; the cycle in flight still
	// completes before the flag is observed.
	sampler.onCall = func(n int) {
		if n == 3 {
			loop.RequestStop()
		}
	}

	wait := runLoop(t, loop)
	wait()

	cycles := loop.Cycles()
	if cycles != 3 {
		t.Fatalf("cycles = %d, want 3", cycles)
	}
	if got := int64(len(poster.Payloads())); got != cycles {
		t.Errorf("delivered = %d, want one per cycle (%d)", got, cycles)
	}
	if notifier.ready.Load() != 1 {
		t.Errorf("ready notifications = %d, want 1", notifier.ready.Load())
	}
	if notifier.stopping.Load() != 1 {
		t.Errorf("stopping notifications = %d, want 1", notifier.stopping.Load())
	}
	if notifier.watchdog.Load() != cycles {
		t.Errorf("watchdog notifications = %d, want %d", notifier.watchdog.Load(), cycles)
	}

	// No further cycles after shutdown.
	time.Sleep(20 * time.Millisecond)
	if loop.Cycles() != cycles {
		t.Errorf("cycles advanced after stop: %d", loop.Cycles())
	}
}

func TestLoopSkipsDeliveryWhenSamplingFails(t *testing.T) {
	sampler := &fakeSampler{
		failOn: map[int]*sysinfo.SampleError{
			2: {Kind: sysinfo.KindSysinfoUnavailable, Message: "injected"},
		},
	}
	poster := &fakePoster{}
	notifier := &fakeNotifier{}
	loop := newTestLoop(sampler, poster, notifier)

	sampler.onCall = func(n int) {
		if n == 3 {
			loop.RequestStop()
		}
	}

	wait := runLoop(t, loop)
	wait()

	payloads := poster.Payloads()
	if len(payloads) != 2 {
		t.Fatalf("delivered = %d, want 2 (cycle 2 must send nothing)", len(payloads))
	}

	var uptimes []int64
	for _, p := range payloads {
		var doc struct {
			Uptime int64 `json:"uptime"`
		}
		if err := json.Unmarshal(p, &doc); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		uptimes = append(uptimes, doc.Uptime)
	}
	if uptimes[0] != 1 || uptimes[1] != 3 {
		t.Errorf("delivered cycles %v, want [1 3]", uptimes)
	}

	// Failed cycles still count for liveness.
	if notifier.watchdog.Load() != 3 {
		t.Errorf("watchdog notifications = %d, want 3", notifier.watchdog.Load())
	}
}

func TestLoopSurvivesDeliveryFailures(t *testing.T) {
	sampler := &fakeSampler{}
	poster := &fakePoster{err: &transport.Error{Kind: transport.KindUnexpectedStatus, Status: 500}}
	notifier := &fakeNotifier{}
	loop := newTestLoop(sampler, poster, notifier)

	sampler.onCall = func(n int) {
		if n == 4 {
			loop.RequestStop()
		}
	}

	wait := runLoop(t, loop)
	wait()

	if loop.Cycles() != 4 {
		t.Errorf("cycles = %d, want 4 (delivery failures must not abort the loop)", loop.Cycles())
	}
	if notifier.stopping.Load() != 1 {
		t.Errorf("stopping notifications = %d, want 1", notifier.stopping.Load())
	}
}

type failingEncoder struct{}

func (failingEncoder) Encode(*sysinfo.HostSnapshot) ([]byte, error) {
	return nil, &report.EncodeError{Kind: report.KindDocumentCreationFailed, Err: errors.New("injected")}
}

func TestLoopSkipsDeliveryWhenEncodingFails(t *testing.T) {
	sampler := &fakeSampler{}
	poster := &fakePoster{}
	notifier := &fakeNotifier{}
	loop := New(Config{Interval: time.Millisecond}, sampler, failingEncoder{}, poster, notifier, slog.Default())

	sampler.onCall = func(n int) {
		if n == 2 {
			loop.RequestStop()
		}
	}

	wait := runLoop(t, loop)
	wait()

	if len(poster.Payloads()) != 0 {
		t.Errorf("delivered = %d, want 0 when encoding fails", len(poster.Payloads()))
	}
}

func TestRequestStopIsIdempotent(t *testing.T) {
	loop := newTestLoop(&fakeSampler{}, &fakePoster{}, &fakeNotifier{})

	loop.RequestStop()
	loop.RequestStop()
	loop.RequestStop()
}

func TestLoopStopsOnContextCancel(t *testing.T) {
	sampler := &fakeSampler{}
	notifier := &fakeNotifier{}
	loop := newTestLoop(sampler, &fakePoster{}, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		loop.Run(ctx)
	}()

	for sampler.Calls() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop on context cancel")
	}
	if notifier.stopping.Load() != 1 {
		t.Errorf("stopping notifications = %d, want 1", notifier.stopping.Load())
	}
}

func TestErrKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"sample", &sysinfo.SampleError{Kind: sysinfo.KindMeminfoIncomplete}, "meminfo_incomplete"},
		{"encode", &report.EncodeError{Kind: report.KindDocumentCreationFailed}, "document_creation_failed"},
		{"transport", &transport.Error{Kind: transport.KindRequestFailed}, "request_failed"},
		{"plain", errors.New("nope"), "unclassified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errKind(tt.err); got != tt.want {
				t.Errorf("errKind() = %q, want %q", got, tt.want)
			}
		})
	}
}
