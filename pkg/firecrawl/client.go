// Package firecrawl is a minimal client for the Firecrawl scrape API, used as
// a hosted fallback when direct fetches are blocked.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Default base URL for the Firecrawl v1 API.
const defaultBaseURL = "https://api.firecrawl.dev/v1"

// FormatRawHTML asks for the unmodified page source, script tags included.
const FormatRawHTML = "rawHtml"

// Client defines the Firecrawl API operations in use.
type Client interface {
	Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeResponse, error)
}

// ScrapeRequest is the body for POST /scrape.
type ScrapeRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats,omitempty"`
	// WaitFor delays capture by this many milliseconds so client-side
	// scripts can inject JSON-LD.
	WaitFor int `json:"waitFor,omitempty"`
	// Timeout is in milliseconds.
	Timeout int `json:"timeout,omitempty"`
}

// ScrapeResponse is the response from POST /scrape.
type ScrapeResponse struct {
	Success bool     `json:"success"`
	Data    PageData `json:"data"`
	Error   string   `json:"error,omitempty"`
}

// PageData is a single scraped page.
type PageData struct {
	RawHTML  string   `json:"rawHtml"`
	HTML     string   `json:"html"`
	Metadata Metadata `json:"metadata"`
}

// Metadata describes the scraped page.
type Metadata struct {
	Title      string `json:"title"`
	SourceURL  string `json:"sourceURL"`
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
}

// APIError is returned when Firecrawl responds with a non-2xx status.
// Message holds the "error" field of the JSON body when there is one.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("firecrawl: HTTP %d: %s", e.StatusCode, msg)
}

// Config tunes a Client. Zero fields take defaults.
type Config struct {
	BaseURL string
	// Timeout bounds a whole round trip. Firecrawl holds the connection
	// open while it renders, so this must exceed ScrapeRequest.Timeout.
	Timeout time.Duration
	// MaxResponseBytes caps how much of a response body is read.
	MaxResponseBytes int64
	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

const (
	defaultTimeout          = 90 * time.Second
	defaultMaxResponseBytes = 16 << 20
)

type restClient struct {
	apiKey   string
	endpoint string
	maxBody  int64
	hc       *http.Client
}

// NewClient returns a Client authenticating with apiKey.
func NewClient(apiKey string, cfg Config) Client {
	c := &restClient{
		apiKey:   apiKey,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/scrape",
		maxBody:  cfg.MaxResponseBytes,
		hc:       cfg.HTTPClient,
	}
	if cfg.BaseURL == "" {
		c.endpoint = defaultBaseURL + "/scrape"
	}
	if c.maxBody <= 0 {
		c.maxBody = defaultMaxResponseBytes
	}
	if c.hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.hc = &http.Client{Timeout: timeout}
	}
	return c
}

func (c *restClient) Scrape(ctx context.Context, sr ScrapeRequest) (*ScrapeResponse, error) {
	if sr.URL == "" {
		return nil, eris.New("firecrawl: scrape request has no url")
	}
	payload, err := json.Marshal(sr)
	if err != nil {
		return nil, eris.Wrap(err, "firecrawl: encode scrape request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrapf(err, "firecrawl: scrape %s", sr.URL)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "firecrawl: scrape %s", sr.URL)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, eris.Wrapf(err, "firecrawl: read response for %s", sr.URL)
	}
	if int64(len(body)) > c.maxBody {
		return nil, eris.Errorf("firecrawl: response for %s exceeds %d bytes", sr.URL, c.maxBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		var failure struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &failure) == nil {
			apiErr.Message = failure.Error
		}
		return nil, eris.Wrapf(apiErr, "firecrawl: scrape %s", sr.URL)
	}

	var out ScrapeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrapf(err, "firecrawl: decode response for %s", sr.URL)
	}
	return &out, nil
}
