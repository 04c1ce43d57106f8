// Package transport delivers encoded reports to the collector over HTTP.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"time"
)

// requestTimeout bounds the whole exchange: connect, write, response.
const requestTimeout = 5000 * time.Millisecond

// Client posts report payloads to a single collector URL. One Client and
// its underlying connection pool live for the whole process so that
// consecutive cycles reuse connections. Retry policy belongs to the
// caller; Post never retries.
type Client struct {
	serverURL  string
	userAgent  string
	httpClient *http.Client
}

// NewClient validates the collector URL and builds the persistent HTTP
// client. A failure here is fatal to the daemon: there is no point in
// sampling when nothing can ever be delivered.
func NewClient(serverURL string) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", serverURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: missing host", serverURL)
	}

	// ExpectContinueTimeout zero plus never setting the Expect header
	// keeps 100-continue negotiation off entirely.
	httpTransport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   requestTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   requestTimeout,
		ExpectContinueTimeout: 0,
	}

	return &Client{
		serverURL: serverURL,
		userAgent: "net/http " + runtime.Version(),
		httpClient: &http.Client{
			Transport: httpTransport,
			Timeout:   requestTimeout,
		},
	}, nil
}

// ServerURL returns the configured delivery target.
func (c *Client) ServerURL() string {
	return c.serverURL
}

// Post sends one JSON payload. nil means the server answered 201; any
// other outcome comes back as a classified *Error.
func (c *Client) Post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL, bytes.NewReader(payload))
	if err != nil {
		return &Error{Kind: KindRequestFailed, Detail: DetailUnknown, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindRequestFailed, Detail: classify(err), Err: err}
	}
	defer resp.Body.Close()

	// The response body is not part of the contract; drain it so the
	// connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusCreated {
		return &Error{Kind: KindUnexpectedStatus, Status: resp.StatusCode}
	}
	return nil
}
