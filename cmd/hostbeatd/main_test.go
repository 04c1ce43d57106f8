package main

import (
	"context"
	"log/slog"
	"syscall"
	"testing"
	"time"

	"hostbeat/internal/mockserver"
)

func TestRunRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"missing interval", []string{"-s", "http://127.0.0.1:9000"}},
		{"interval below minimum", []string{"-s", "http://127.0.0.1:9000", "-i", "0"}},
		{"verbosity out of range", []string{"-s", "http://127.0.0.1:9000", "-i", "5", "-v", "9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code := run(tt.args); code != exitBadUsage {
				t.Errorf("run() = %d, want %d", code, exitBadUsage)
			}
		})
	}
}

func TestRunFailsOnUnusableServerURL(t *testing.T) {
	if code := run([]string{"-s", "ftp://nope", "-i", "1"}); code != exitRuntime {
		t.Errorf("run() = %d, want %d", code, exitRuntime)
	}
}

// TestRunDeliversAndStopsOnSigterm drives the real binary entry point
// against an in-process collector: at least one report must arrive, and
// SIGTERM must end the run with a clean exit code.
func TestRunDeliversAndStopsOnSigterm(t *testing.T) {
	if testing.Short() {
		t.Skip("1s minimum interval makes this test slow")
	}

	collector := mockserver.New(mockserver.DefaultConfig(), slog.Default())
	if err := collector.Start(); err != nil {
		t.Fatalf("start collector: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		collector.Stop(ctx)
	}()

	done := make(chan int, 1)
	go func() {
		done <- run([]string{"-s", collector.URL(), "-i", "1", "-v", "0"})
	}()

	deadline := time.After(10 * time.Second)
	for collector.Received() == 0 {
		select {
		case code := <-done:
			t.Fatalf("run exited early with %d", code)
		case <-deadline:
			t.Fatal("no report arrived")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("send SIGTERM: %v", err)
	}

	select {
	case code := <-done:
		if code != exitOK {
			t.Errorf("run() = %d, want %d", code, exitOK)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop after SIGTERM")
	}
}
