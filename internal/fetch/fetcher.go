// Package fetch retrieves raw page markup over HTTP.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds the whole fetch including body read.
	DefaultTimeout = 10 * time.Second

	// userAgent identifies as a browser; many sites serve stripped or
	// blocked responses to unknown clients.
	userAgent = "Mozilla/5.0"

	// maxBodySize caps how much markup we read from a single page.
	maxBodySize = 10 << 20 // 10 MiB
)

// Error wraps any transport-level failure while fetching a page.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch error: %v", e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fetcher performs blocking HTTP GETs with a bounded timeout.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher. A zero timeout falls back to DefaultTimeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the markup at url. Non-2xx responses are not treated as
// failures; whatever body the server returns is handed to extraction.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", &Error{URL: url, Err: err}
	}

	return string(body), nil
}
