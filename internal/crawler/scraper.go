package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"habrscan/internal/config"
)

// Transport errors.
var (
	ErrTransport            = errors.New("transport failure")
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrBodyTooLarge         = errors.New("response body exceeds buffer limit")
)

// TransportError describes a failed fetch of the listing page.
type TransportError struct {
	Err        error
	URL        string
	StatusCode int
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// Scraper issues a single GET per call. It never retries.
type Scraper struct {
	client       *http.Client
	timeout      time.Duration
	bufferSizeKb int
}

// NewScraperWithConfig creates a scraper from the request settings.
func NewScraperWithConfig(rc *config.RequestConfig) *Scraper {
	return NewScraperWithTimeout(rc.GetTimeout(), rc.BufferSizeKb)
}

// NewScraperWithTimeout creates a scraper with an explicit bound on each fetch.
func NewScraperWithTimeout(timeout time.Duration, bufferSizeKb int) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout:      timeout,
		bufferSizeKb: bufferSizeKb,
	}
}

// FetchWithMetrics returns (content, statusCode, duration, error).
// Any non-2xx status is an error.
func (s *Scraper) FetchWithMetrics(ctx context.Context, url string, header http.Header) (string, int, time.Duration, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", 0, time.Since(startTime), &TransportError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0, time.Since(startTime), &TransportError{URL: url, Err: err}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", resp.StatusCode, time.Since(startTime), &TransportError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %d", ErrUnexpectedStatusCode, resp.StatusCode),
		}
	}

	// bufferSizeKb is in KB, convert to bytes; read one extra byte to detect overflow
	limit := int64(s.bufferSizeKb) * 1024
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))

	if err != nil {
		return "", resp.StatusCode, time.Since(startTime), &TransportError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	if int64(len(body)) > limit {
		return "", resp.StatusCode, time.Since(startTime), &TransportError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %d KB", ErrBodyTooLarge, s.bufferSizeKb),
		}
	}

	return string(body), resp.StatusCode, time.Since(startTime), nil
}

// ReadLocalFile reads a saved listing page from disk.
func (s *Scraper) ReadLocalFile(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read local file %s: %w", filePath, err)
	}

	return string(content), nil
}
