// Package mockserver is a stand-in collector: it accepts report POSTs,
// answers 201 and remembers what it saw. Used by the mockserver binary
// for manual runs and by tests.
package mockserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
)

const maxPayloadBytes = 1 << 20

// Config configures the mock collector.
type Config struct {
	Addr string

	// StatusCode is what the collector answers with; 201 by default.
	// Other values let tests exercise the daemon's status handling.
	StatusCode int

	// LogPayloads echoes each received document at info level.
	LogPayloads bool
}

// DefaultConfig returns a loopback collector answering 201.
func DefaultConfig() *Config {
	return &Config{
		Addr:       "127.0.0.1:0",
		StatusCode: http.StatusCreated,
	}
}

// Server is the mock collector.
type Server struct {
	cfg        *Config
	log        *slog.Logger
	httpServer *http.Server
	listener   net.Listener

	received atomic.Int64

	mu   sync.Mutex
	last []byte
}

// New creates a Server; call Start to begin listening.
func New(cfg *Config, log *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.StatusCode == 0 {
		cfg.StatusCode = http.StatusCreated
	}
	return &Server{cfg: cfg, log: log}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleReport)

	s.httpServer = &http.Server{Handler: mux}
	go s.httpServer.Serve(listener)

	return nil
}

// Stop shuts the server down, waiting up to ctx for open requests.
func (s *Server) Stop(ctx context.Context) {
	if s.httpServer != nil {
		s.httpServer.Shutdown(ctx)
	}
}

// Addr returns the bound address, valid after Start.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// URL returns the endpoint daemons should post to.
func (s *Server) URL() string {
	return "http://" + s.Addr() + "/"
}

// Received reports how many documents arrived.
func (s *Server) Received() int64 {
	return s.received.Load()
}

// LastPayload returns a copy of the most recent document.
func (s *Server) LastPayload() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.last...)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if !json.Valid(body) {
		s.log.Warn("invalid_report_payload", "bytes", len(body))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.received.Add(1)
	s.mu.Lock()
	s.last = body
	s.mu.Unlock()

	if s.cfg.LogPayloads {
		s.log.Info("report_received", "payload", string(body))
	} else {
		s.log.Debug("report_received", "bytes", len(body))
	}

	w.WriteHeader(s.cfg.StatusCode)
}
