package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/schema-gap/internal/resilience"
)

func fastOptions(retries int) LocalOptions {
	opts := DefaultLocalOptions()
	opts.Retry = resilience.WithRetries(retries)
	opts.Retry.InitialBackoff = time.Millisecond
	opts.Retry.MaxBackoff = 5 * time.Millisecond
	opts.Retry.JitterFraction = 0
	return opts
}

const productPage = `<html><head><title>Acme</title>
<script type="application/ld+json">{"@type":"Product","name":"Widget"}</script>
</head><body><h1>Widget</h1></body></html>`

func TestLocalScraper_ReturnsRawHTML(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(productPage))
	}))
	defer srv.Close()

	s := NewLocalScraper(fastOptions(0))
	result, err := s.Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "local_http", result.Source)
	assert.Equal(t, 200, result.Page.StatusCode)
	assert.Equal(t, productPage, result.Page.HTML)
	assert.Equal(t, srv.URL, result.Page.URL)
	assert.False(t, result.Page.FetchedAt.IsZero())
	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Contains(t, gotLang, "fr-FR")
}

func TestLocalScraper_FollowsRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productPage))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewLocalScraper(fastOptions(0))
	result, err := s.Scrape(context.Background(), srv.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/old", result.Page.URL)
	assert.Equal(t, srv.URL+"/new", result.Page.FinalURL)
}

func TestLocalScraper_Cloudflare(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cf-Ray", "abc123")
		w.WriteHeader(403)
		_, _ = w.Write([]byte(`<html><body>Access denied</body></html>`))
	}))
	defer srv.Close()

	s := NewLocalScraper(fastOptions(2))
	_, err := s.Scrape(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, resilience.IsBlocked(err))
	assert.Contains(t, err.Error(), "blocked")
}

func TestLocalScraper_Captcha(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>Please complete the reCAPTCHA to continue</body></html>`))
	}))
	defer srv.Close()

	s := NewLocalScraper(fastOptions(0))
	_, err := s.Scrape(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked (captcha)")
}

func TestLocalScraper_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))
	defer srv.Close()

	s := NewLocalScraper(fastOptions(0))
	_, err := s.Scrape(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLocalScraper_HTTP404NotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(404)
		_, _ = w.Write([]byte(`<html><body>Not found</body></html>`))
	}))
	defer srv.Close()

	s := NewLocalScraper(fastOptions(2))
	_, err := s.Scrape(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestLocalScraper_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(productPage))
	}))
	defer srv.Close()

	s := NewLocalScraper(fastOptions(2))
	result, err := s.Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, productPage, result.Page.HTML)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLocalScraper_GivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewLocalScraper(fastOptions(1))
	_, err := s.Scrape(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestLocalScraper_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productPage))
	}))
	defer srv.Close()

	opts := fastOptions(0)
	opts.MaxBodyBytes = 10
	s := NewLocalScraper(opts)
	result, err := s.Scrape(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, result.Page.HTML, 10)
}

func TestLocalScraper_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productPage))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewLocalScraper(fastOptions(2))
	_, err := s.Scrape(ctx, srv.URL)
	assert.Error(t, err)
}

func TestLocalScraper_Supports(t *testing.T) {
	s := NewLocalScraper(LocalOptions{})
	assert.True(t, s.Supports("https://example.com"))
	assert.True(t, s.Supports("http://example.com/a"))
	assert.False(t, s.Supports("ftp://example.com"))
	assert.False(t, s.Supports("example.com"))
}
