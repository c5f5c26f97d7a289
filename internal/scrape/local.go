package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/schema-gap/internal/model"
	"github.com/sells-group/schema-gap/internal/resilience"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultAcceptLanguage = "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7"
	defaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// LocalOptions configures LocalScraper.
type LocalOptions struct {
	UserAgent      string
	AcceptLanguage string
	Timeout        time.Duration
	MaxBodyBytes   int64
	Retry          resilience.RetryConfig
	Limiter        *HostLimiter
}

// DefaultLocalOptions returns browser-like headers, a 25s timeout, a 4 MiB
// body cap and two retries.
func DefaultLocalOptions() LocalOptions {
	return LocalOptions{
		UserAgent:      defaultUserAgent,
		AcceptLanguage: defaultAcceptLanguage,
		Timeout:        25 * time.Second,
		MaxBodyBytes:   4 << 20,
		Retry:          resilience.WithRetries(2),
	}
}

// LocalScraper fetches raw HTML via net/http with browser-like headers,
// detects anti-bot walls and retries transient failures.
type LocalScraper struct {
	client *http.Client
	opts   LocalOptions
}

// NewLocalScraper creates a LocalScraper. Zero option fields take the
// defaults from DefaultLocalOptions.
func NewLocalScraper(opts LocalOptions) *LocalScraper {
	def := DefaultLocalOptions()
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.AcceptLanguage == "" {
		opts.AcceptLanguage = def.AcceptLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = def.MaxBodyBytes
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = def.Retry
	}

	return &LocalScraper{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				ForceAttemptHTTP2:   true,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		opts: opts,
	}
}

func (l *LocalScraper) Name() string             { return "local_http" }
func (l *LocalScraper) Supports(url string) bool { return isHTTPURL(url) }

// Scrape fetches targetURL, retrying transient failures.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	retry := l.opts.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger(l.Name(), targetURL)
	}
	return resilience.DoVal(ctx, retry, func(ctx context.Context) (*Result, error) {
		return l.fetch(ctx, targetURL)
	})
}

func (l *LocalScraper) fetch(ctx context.Context, targetURL string) (*Result, error) {
	if err := l.opts.Limiter.Wait(ctx, targetURL); err != nil {
		return nil, eris.Wrap(err, "local_http: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", l.opts.UserAgent)
	req.Header.Set("Accept", defaultAccept)
	req.Header.Set("Accept-Language", l.opts.AcceptLanguage)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, l.opts.MaxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if blocked, blockType := DetectBlock(resp, body); blocked {
		return nil, eris.Wrap(&resilience.BlockedError{URL: targetURL, Reason: string(blockType)}, "local_http")
	}

	if resp.StatusCode >= 400 {
		err := eris.Errorf("local_http: status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	if len(body) == 0 {
		return nil, eris.New("local_http: empty page")
	}

	return &Result{
		Page: model.FetchedPage{
			URL:        targetURL,
			FinalURL:   resp.Request.URL.String(),
			HTML:       string(body),
			StatusCode: resp.StatusCode,
			FetchedAt:  time.Now().UTC(),
		},
		Source: l.Name(),
	}, nil
}
