package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"ListingRadar/internal/ports"
)

const defaultTimeout = 30 * time.Second

// The source serves a bot interstitial to clients that do not look like a
// desktop browser, so every request carries a full browser header set.
// Accept-Encoding is left to the transport so gzip is decoded transparently.
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif," +
		"image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	"Accept-Language":           "he-IL,he;q=0.9,en;q=0.8",
	"DNT":                       "1",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Cache-Control":             "max-age=0",
}

// Fetcher retrieves search result pages while presenting a realistic browser
// identity. Redirects are followed by the underlying client.
type Fetcher struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.Fetcher = (*Fetcher)(nil)

// New wires an HTTP client; a nil client gets a default with a per-fetch
// timeout so a hung request cannot block a topic's task forever.
func New(client *http.Client, log *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Fetcher{client: client, logger: log}
}

// Fetch GETs the page and returns the raw body text. Any HTTP status is
// returned as-is; interpreting the document belongs to the extractor.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	for name, value := range browserHeaders {
		req.Header.Set(name, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", pageURL, err)
	}

	if f.logger != nil {
		f.logger.Debug("page fetched", "url", pageURL, "status", resp.StatusCode, "bytes", len(body))
	}
	return string(body), nil
}
