// Package fetch provides the shared HTTP page reader used by extraction
// capabilities and the image enricher. One client, bounded timeouts,
// browser-like headers; a failing fetch is reported to the caller and
// never retried — a bad source is simply skipped for the run.
package fetch

import (
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single page fetch. Upstream venue sites are
// slow; anything past this is treated as a failure for that URL only.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps response bodies; event pages past this size are
// cut off rather than buffered whole.
const maxBodyBytes = 4 << 20

// Reader fetches web pages on behalf of the pipeline.
type Reader struct {
	httpClient *http.Client
	userAgents []string
}

// NewReader creates a page reader with the default timeout.
func NewReader() *Reader {
	return NewReaderWithTimeout(DefaultTimeout)
}

// NewReaderWithTimeout creates a page reader with a custom timeout.
func NewReaderWithTimeout(timeout time.Duration) *Reader {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		IdleConnTimeout: 90 * time.Second,
	}

	return &Reader{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgents: []string{
			"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
	}
}

// FetchPage retrieves a page body as a string. The context bounds the
// whole request in addition to the client timeout.
func (r *Reader) FetchPage(ctx context.Context, url string) (string, error) {
	if err := validateURL(url); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	r.setHeaders(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch returned status %d for %s", resp.StatusCode, url)
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return string(body), nil
}

func (r *Reader) setHeaders(req *http.Request) {
	// Rotate user agents per request so repeated polls of the same site
	// don't present one fingerprint.
	ua := r.userAgents[int(time.Now().UnixNano())%len(r.userAgents)]
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,fr-CA;q=0.8")
	req.Header.Set("Connection", "keep-alive")
}

func validateURL(url string) error {
	if url == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(url) > 2048 {
		return fmt.Errorf("URL too long: %d characters", len(url))
	}
	if !(len(url) > 8 && (url[:7] == "http://" || url[:8] == "https://")) {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	return nil
}
