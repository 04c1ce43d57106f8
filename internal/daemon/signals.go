package daemon

import (
	"os"
	"syscall"
)

// HandleSignals consumes process signals until the channel closes.
// Termination-class signals only flip the shutdown flag; the current
// cycle always finishes. SIGHUP is acknowledged and ignored.
func (l *Loop) HandleSignals(sigCh <-chan os.Signal) {
	for sig := range sigCh {
		switch sig {
		case syscall.SIGTERM, syscall.SIGINT:
			l.log.Warn("termination_signal", "signal", sig.String())
			l.RequestStop()
		case syscall.SIGHUP:
			l.log.Warn("sighup_ignored")
		}
	}
}
