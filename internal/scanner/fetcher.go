package scanner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// DefaultMaxBodySize is the default limit on the number of bytes read from
// a response body.
const DefaultMaxBodySize int64 = 5 * 1024 * 1024

// Fetcher downloads a page body.
// Fetch returns the body and true on success, or "" and false on any failure.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, bool)
}

// HTTPFetcher is a Fetcher backed by an *http.Client.
//
// Timeouts, redirects and the User-Agent header are properties of the
// client; see the httpclient package.
type HTTPFetcher struct {
	client      *http.Client
	maxBodySize int64
	logger      *slog.Logger
}

// FetcherOption configures an HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithMaxBodySize sets the maximum number of body bytes read per page.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithFetcherLogger sets the logger used to report failed fetches.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher creates a fetcher that uses client for every request.
func NewHTTPFetcher(client *http.Client, opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      client,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Fetch performs a single GET request. There is no retry: a timeout, DNS
// failure, non-2xx status or body read error is logged at WARN and turned
// into ("", false).
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, bool) {
	body, err := f.fetch(ctx, pageURL)
	if err != nil {
		f.logger.Warn("failed to fetch page", "url", pageURL, "error", err)
		return "", false
	}
	return body, true
}

func (f *HTTPFetcher) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	return string(body), nil
}
