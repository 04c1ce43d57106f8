// Package notify sends one-way lifecycle notifications to the service
// manager over the sd_notify protocol. Every call is a no-op when the
// process is not running under a manager (no NOTIFY_SOCKET).
package notify

import (
	"fmt"
	"log/slog"

	sd "github.com/coreos/go-systemd/v22/daemon"
)

// Notifier is the host-environment lifecycle contract the daemon drives.
type Notifier interface {
	// Ready signals that startup finished and the loop is about to run.
	Ready()
	// Watchdog signals liveness once per completed cycle.
	Watchdog()
	// Stopping signals that the loop has exited and shutdown began.
	Stopping()
	// StartupFailure reports an errno-style code when startup aborts
	// before the loop ever runs.
	StartupFailure(code int)
}

// Systemd notifies the service manager via sd_notify datagrams.
type Systemd struct {
	log *slog.Logger
}

// NewSystemd returns a Notifier backed by sd_notify.
func NewSystemd(log *slog.Logger) *Systemd {
	return &Systemd{log: log}
}

func (s *Systemd) Ready() {
	s.send(sd.SdNotifyReady)
}

func (s *Systemd) Watchdog() {
	s.send(sd.SdNotifyWatchdog)
}

func (s *Systemd) Stopping() {
	s.send(sd.SdNotifyStopping)
}

func (s *Systemd) StartupFailure(code int) {
	s.send(fmt.Sprintf("ERRNO=%d", code))
}

func (s *Systemd) send(state string) {
	// unsetEnvironment=false: the socket stays usable for every later
	// notification in the process lifetime.
	sent, err := sd.SdNotify(false, state)
	if err != nil {
		s.log.Debug("sd_notify_failed", "state", state, "err", err)
		return
	}
	if sent {
		s.log.Debug("sd_notify_sent", "state", state)
	}
}
