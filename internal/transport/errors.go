package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrorKind is the closed failure set exposed by Post.
type ErrorKind string

const (
	// KindRequestFailed covers everything that prevented a completed
	// HTTP exchange: DNS, connect, TLS, timeout.
	KindRequestFailed ErrorKind = "request_failed"

	// KindUnexpectedStatus means the exchange completed but the server
	// answered with something other than 201 Created.
	KindUnexpectedStatus ErrorKind = "unexpected_status"
)

// Detail narrows a RequestFailed error for diagnostics. It never changes
// how callers handle the failure.
type Detail string

const (
	DetailDNS     Detail = "dns_error"
	DetailConnect Detail = "connect_error"
	DetailTLS     Detail = "tls_error"
	DetailTimeout Detail = "timeout"
	DetailUnknown Detail = "unknown"
)

// Error is the classified delivery failure.
type Error struct {
	Kind   ErrorKind
	Detail Detail
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnexpectedStatus:
		return fmt.Sprintf("%s: got %d, want 201", e.Kind, e.Status)
	default:
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Detail, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps a transport-level error onto a Detail.
func classify(err error) Detail {
	if errors.Is(err, context.DeadlineExceeded) {
		return DetailTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return DetailTimeout
		}
		return DetailDNS
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return DetailTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return DetailTimeout
		}
		return DetailConnect
	}

	if strings.Contains(err.Error(), "tls:") || strings.Contains(err.Error(), "x509:") {
		return DetailTLS
	}

	return DetailUnknown
}
