package scrape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/schema-gap/internal/model"
)

// mockScraper implements Scraper for testing.
type mockScraper struct {
	name     string
	supports bool
	result   *Result
	err      error
	calls    int
}

func (m *mockScraper) Name() string           { return m.name }
func (m *mockScraper) Supports(_ string) bool { return m.supports }
func (m *mockScraper) Scrape(_ context.Context, _ string) (*Result, error) {
	m.calls++
	return m.result, m.err
}

func page(url, source string) *Result {
	return &Result{
		Page:   model.FetchedPage{URL: url, HTML: "<html></html>", StatusCode: 200},
		Source: source,
	}
}

func TestChain_Scrape_FirstSuccess(t *testing.T) {
	s1 := &mockScraper{name: "primary", supports: true, result: page("https://acme.com", "primary")}
	s2 := &mockScraper{name: "fallback", supports: true}

	chain := NewChain(s1, s2)
	result, err := chain.Scrape(context.Background(), "https://acme.com")

	require.NoError(t, err)
	assert.Equal(t, "primary", result.Source)
	assert.Equal(t, "https://acme.com", result.Page.URL)
	assert.Zero(t, s2.calls)
}

func TestChain_Scrape_FallbackOnError(t *testing.T) {
	s1 := &mockScraper{name: "primary", supports: true, err: errors.New("failed")}
	s2 := &mockScraper{name: "fallback", supports: true, result: page("https://acme.com", "fallback")}

	chain := NewChain(s1, s2)
	result, err := chain.Scrape(context.Background(), "https://acme.com")

	require.NoError(t, err)
	assert.Equal(t, "fallback", result.Source)
	assert.Equal(t, 1, s1.calls)
}

func TestChain_Scrape_SkipsUnsupported(t *testing.T) {
	s1 := &mockScraper{name: "primary", supports: false, result: page("https://acme.com", "primary")}
	s2 := &mockScraper{name: "fallback", supports: true, result: page("https://acme.com", "fallback")}

	chain := NewChain(s1, s2)
	result, err := chain.Scrape(context.Background(), "https://acme.com")

	require.NoError(t, err)
	assert.Equal(t, "fallback", result.Source)
	assert.Zero(t, s1.calls)
}

func TestChain_Scrape_AllFail(t *testing.T) {
	s1 := &mockScraper{name: "primary", supports: true, err: errors.New("first")}
	s2 := &mockScraper{name: "fallback", supports: true, err: errors.New("second")}

	chain := NewChain(s1, s2)
	_, err := chain.Scrape(context.Background(), "https://acme.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all scrapers failed")
	assert.Contains(t, err.Error(), "second")
}

func TestChain_Scrape_NoneSupport(t *testing.T) {
	chain := NewChain(&mockScraper{name: "primary"})
	_, err := chain.Scrape(context.Background(), "https://acme.com")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no suitable scraper")
}

func TestChain_Scrape_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s1 := &mockScraper{name: "primary", supports: true, err: context.Canceled}
	s2 := &mockScraper{name: "fallback", supports: true, result: page("https://acme.com", "fallback")}

	_, err := NewChain(s1, s2).Scrape(ctx, "https://acme.com")
	require.Error(t, err)
	assert.Zero(t, s2.calls)
}

func TestChain_Supports(t *testing.T) {
	assert.False(t, NewChain().Supports("https://acme.com"))
	assert.True(t, NewChain(&mockScraper{supports: false}, &mockScraper{supports: true}).Supports("https://acme.com"))
	assert.Equal(t, "chain", NewChain().Name())
}
