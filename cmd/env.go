package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/schema-gap/internal/analyze"
	"github.com/sells-group/schema-gap/internal/config"
	"github.com/sells-group/schema-gap/internal/resilience"
	"github.com/sells-group/schema-gap/internal/scrape"
	"github.com/sells-group/schema-gap/internal/store"
	"github.com/sells-group/schema-gap/pkg/firecrawl"
)

// initStore opens and migrates the configured store. The "none" driver
// returns a nil Store.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case config.DriverNone:
		return nil, nil
	case config.DriverSQLite:
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	case config.DriverPostgres:
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// buildScraper wires the local fetcher, then the headless browser when
// fetch.render_js is set, then Firecrawl when an API key is configured. The
// returned func releases the browser.
func buildScraper(fc config.FetchConfig) (scrape.Scraper, func() error) {
	local := scrape.NewLocalScraper(scrape.LocalOptions{
		UserAgent:      fc.UserAgent,
		AcceptLanguage: fc.AcceptLanguage,
		Timeout:        fc.Timeout(),
		MaxBodyBytes:   fc.MaxBodyBytes,
		Retry:          resilience.WithRetries(fc.Retries),
		Limiter:        scrape.NewHostLimiter(fc.RatePerHost, 1),
	})

	scrapers := []scrape.Scraper{local}
	closeFn := func() error { return nil }
	if fc.RenderJS {
		browser := scrape.NewBrowserScraper(scrape.BrowserOptions{
			RemoteURL: fc.BrowserURL,
			Timeout:   fc.Timeout(),
		})
		scrapers = append(scrapers, browser)
		closeFn = browser.Close
	}
	if fc.FirecrawlKey != "" {
		scrapers = append(scrapers, scrape.NewFirecrawlScraper(
			firecrawl.NewClient(fc.FirecrawlKey, firecrawl.Config{Timeout: fc.Timeout() + 30*time.Second}),
			fc.Timeout(),
			resilience.WithRetries(fc.Retries),
		))
	}

	if len(scrapers) == 1 {
		return local, closeFn
	}
	return scrape.NewChain(scrapers...), closeFn
}

// analyzerEnv holds everything a comparison needs, plus cleanup.
type analyzerEnv struct {
	Analyzer *analyze.Analyzer
	Store    store.Store
	closers  []func() error
}

// initAnalyzer builds the analyzer. allowLocalFiles lets source URLs name
// files on this machine; only the CLI passes true.
func initAnalyzer(ctx context.Context, allowLocalFiles bool) (*analyzerEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	scraper, closeScraper := buildScraper(cfg.Fetch)
	env := &analyzerEnv{
		Analyzer: analyze.New(scraper, st, analyze.Options{
			MaxConcurrent:   cfg.Fetch.MaxConcurrent,
			CacheTTL:        cfg.Fetch.CacheTTL(),
			FetchTimeout:    fetchBudget(cfg.Fetch),
			AllowLocalFiles: allowLocalFiles,
		}),
		Store:   st,
		closers: []func() error{closeScraper},
	}
	if st != nil {
		env.closers = append(env.closers, st.Close)
	}
	return env, nil
}

// fetchBudget covers every attempt of every scraper in the chain for one URL.
func fetchBudget(fc config.FetchConfig) time.Duration {
	attempts := fc.Retries + 1
	if attempts < 1 {
		attempts = 1
	}
	return fc.Timeout() * time.Duration(attempts+2)
}

// Close releases the browser and the store.
func (e *analyzerEnv) Close() {
	for _, c := range e.closers {
		if err := c(); err != nil {
			zap.L().Warn("close failed", zap.Error(err))
		}
	}
}
