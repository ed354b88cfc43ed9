// Package crawler fetches the article listing page and extracts its snippets.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"habrscan/internal/extractor"
	"habrscan/internal/logger"
)

// Client combines the fetch and extraction steps.
type Client struct {
	log       *logger.Logger
	scraper   *Scraper
	extractor *extractor.Extractor
}

// NewClientWithDeps creates a new crawler client with injected dependencies.
// A nil logger discards fetch records.
func NewClientWithDeps(scraper *Scraper, ex *extractor.Extractor, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}

	return &Client{
		log:       log,
		scraper:   scraper,
		extractor: ex,
	}
}

// CrawlListing fetches the listing page and extracts its articles.
func (c *Client) CrawlListing(ctx context.Context, url string, header http.Header) (*extractor.Report, error) {
	markup, status, elapsed, err := c.scraper.FetchWithMetrics(ctx, url, header)
	if err != nil {
		c.log.Debug("fetch failed", "url", url, "status", status, "duration", elapsed)

		return nil, fmt.Errorf("failed to scrape URL: %w", err)
	}

	c.log.Info("listing fetched", "url", url, "status", status, "bytes", len(markup), "duration", elapsed)

	return c.extract(markup)
}

// CrawlListingFromFile extracts articles from a saved listing page.
func (c *Client) CrawlListingFromFile(filePath string) (*extractor.Report, error) {
	markup, err := c.scraper.ReadLocalFile(filePath)
	if err != nil {
		return nil, err
	}

	return c.extract(markup)
}

func (c *Client) extract(markup string) (*extractor.Report, error) {
	report, err := c.extractor.ExtractReport(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to extract articles: %w", err)
	}

	return report, nil
}
