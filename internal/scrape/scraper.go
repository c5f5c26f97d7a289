package scrape

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/schema-gap/internal/model"
)

// Result holds a fetched page with the scraper that produced it.
type Result struct {
	Page   model.FetchedPage
	Source string // e.g. "local_http", "browser"
}

// Scraper fetches the raw markup of a single URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*Result, error)
	Name() string
	Supports(url string) bool
}

// NormalizeURL trims the input and defaults the scheme to https. Only http
// and https URLs with a host are accepted.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", eris.New("scrape: empty url")
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", eris.Wrapf(err, "scrape: parse url %q", raw)
	}
	if u.Host == "" {
		return "", eris.Errorf("scrape: url has no host: %q", raw)
	}
	return u.String(), nil
}

// isHTTPURL reports whether raw parses as an absolute http(s) URL.
func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
