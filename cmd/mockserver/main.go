// Package main provides a mock collector binary: it accepts report
// POSTs and answers 201, for trying hostbeatd without a real backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hostbeat/internal/mockserver"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9000", "listen address")
	status := flag.Int("status", 201, "status code to answer with")
	logPayloads := flag.Bool("log-payloads", false, "log each received document")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := mockserver.DefaultConfig()
	cfg.Addr = *addr
	cfg.StatusCode = *status
	cfg.LogPayloads = *logPayloads

	server := mockserver.New(cfg, logger)
	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting mock collector: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Mock collector listening on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Stop(ctx)
	fmt.Printf("Mock collector stopped after %d report(s)\n", server.Received())
}
