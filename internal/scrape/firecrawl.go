package scrape

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/schema-gap/internal/model"
	"github.com/sells-group/schema-gap/internal/resilience"
	"github.com/sells-group/schema-gap/pkg/firecrawl"
)

// FirecrawlScraper fetches pages through the hosted Firecrawl API. It sits
// last in the chain for sites that block direct and headless fetches.
type FirecrawlScraper struct {
	client  firecrawl.Client
	timeout time.Duration
	retry   resilience.RetryConfig
}

// NewFirecrawlScraper wraps client. timeout bounds each scrape on the
// Firecrawl side.
func NewFirecrawlScraper(client firecrawl.Client, timeout time.Duration, retry resilience.RetryConfig) *FirecrawlScraper {
	if retry.MaxAttempts <= 0 {
		retry = resilience.WithRetries(1)
	}
	return &FirecrawlScraper{client: client, timeout: timeout, retry: retry}
}

func (f *FirecrawlScraper) Name() string             { return "firecrawl" }
func (f *FirecrawlScraper) Supports(url string) bool { return isHTTPURL(url) }

// Scrape requests the raw page source so JSON-LD script tags survive.
func (f *FirecrawlScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	resp, err := resilience.DoVal(ctx, f.retry, func(ctx context.Context) (*firecrawl.ScrapeResponse, error) {
		resp, err := f.client.Scrape(ctx, firecrawl.ScrapeRequest{
			URL:     targetURL,
			Formats: []string{firecrawl.FormatRawHTML},
			Timeout: int(f.timeout / time.Millisecond),
		})
		var apiErr *firecrawl.APIError
		if errors.As(err, &apiErr) && resilience.IsTransientHTTPStatus(apiErr.StatusCode) {
			return nil, resilience.NewTransientError(err, apiErr.StatusCode)
		}
		return resp, err
	})
	if err != nil {
		return nil, eris.Wrap(err, "firecrawl")
	}
	if !resp.Success {
		return nil, eris.Errorf("firecrawl: scrape %s unsuccessful: %s", targetURL, resp.Error)
	}

	html := resp.Data.RawHTML
	if strings.TrimSpace(html) == "" {
		html = resp.Data.HTML
	}
	if strings.TrimSpace(html) == "" {
		return nil, eris.Errorf("firecrawl: empty page for %s", targetURL)
	}

	status := resp.Data.Metadata.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	if status >= 400 {
		return nil, eris.Errorf("firecrawl: %s returned HTTP %d", targetURL, status)
	}

	finalURL := resp.Data.Metadata.URL
	if finalURL == "" {
		finalURL = targetURL
	}

	return &Result{
		Page: model.FetchedPage{
			URL:        targetURL,
			FinalURL:   finalURL,
			HTML:       html,
			StatusCode: status,
			FetchedAt:  time.Now().UTC(),
		},
		Source: f.Name(),
	}, nil
}
