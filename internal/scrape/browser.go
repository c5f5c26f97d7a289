package scrape

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/schema-gap/internal/model"
	"github.com/sells-group/schema-gap/internal/resilience"
)

// BrowserOptions configures BrowserScraper.
type BrowserOptions struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome. Empty
	// launches a local headless Chrome on first use.
	RemoteURL string

	// Timeout bounds navigation plus load of a single page. Default: 30s.
	Timeout time.Duration
}

// BrowserScraper renders pages in headless Chrome so JSON-LD injected by
// client-side scripts is visible. The browser starts lazily and is shared
// across calls; Close releases it.
type BrowserScraper struct {
	opts BrowserOptions

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewBrowserScraper creates a BrowserScraper. No browser is started until
// the first Scrape.
func NewBrowserScraper(opts BrowserOptions) *BrowserScraper {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &BrowserScraper{opts: opts}
}

func (b *BrowserScraper) Name() string             { return "browser" }
func (b *BrowserScraper) Supports(url string) bool { return isHTTPURL(url) }

// Scrape navigates to targetURL with stealth evasions applied, waits for the
// load event and returns the rendered document.
func (b *BrowserScraper) Scrape(ctx context.Context, targetURL string) (*Result, error) {
	br, err := b.connect()
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(br.Context(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "browser: open page")
	}
	defer func() { _ = page.Close() }()

	page = page.Timeout(b.opts.Timeout)
	if err := page.Navigate(targetURL); err != nil {
		return nil, eris.Wrapf(err, "browser: navigate %s", targetURL)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, eris.Wrapf(err, "browser: wait load %s", targetURL)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, eris.Wrap(err, "browser: read html")
	}

	stub := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}}
	if blocked, blockType := DetectBlock(stub, []byte(html)); blocked {
		return nil, eris.Wrap(&resilience.BlockedError{URL: targetURL, Reason: string(blockType)}, "browser")
	}

	finalURL := targetURL
	if info, err := page.Info(); err == nil && info != nil {
		finalURL = info.URL
	}

	return &Result{
		Page: model.FetchedPage{
			URL:        targetURL,
			FinalURL:   finalURL,
			HTML:       html,
			StatusCode: http.StatusOK,
			FetchedAt:  time.Now().UTC(),
		},
		Source: b.Name(),
	}, nil
}

// Close shuts the browser down. It is safe to call when nothing was started.
func (b *BrowserScraper) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var err error
	if b.browser != nil {
		err = b.browser.Close()
		b.browser = nil
	}
	if b.lnch != nil {
		b.lnch.Kill()
		b.lnch = nil
	}
	return eris.Wrap(err, "browser: close")
}

func (b *BrowserScraper) connect() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		return b.browser, nil
	}

	controlURL := b.opts.RemoteURL
	if controlURL == "" {
		l := launcher.New().Headless(true)
		u, err := l.Launch()
		if err != nil {
			return nil, eris.Wrap(err, "browser: launch chrome")
		}
		b.lnch = l
		controlURL = u
	}

	br := rod.New().ControlURL(controlURL)
	if err := br.Connect(); err != nil {
		if b.lnch != nil {
			b.lnch.Kill()
			b.lnch = nil
		}
		return nil, eris.Wrap(err, "browser: connect")
	}
	zap.L().Debug("browser: connected", zap.Bool("remote", b.opts.RemoteURL != ""))
	b.browser = br
	return br, nil
}
