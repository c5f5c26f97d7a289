package firecrawl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	return newTestServerWith(t, handler, Config{})
}

func newTestServerWith(t *testing.T, handler http.HandlerFunc, cfg Config) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg.BaseURL = srv.URL + "/"
	return NewClient("test-api-key", cfg)
}

func TestScrape(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantHTML   string
		wantErr    bool
		wantStatus int
	}{
		{
			name: "happy path",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/scrape", r.URL.Path)
				assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var req ScrapeRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "https://example.com", req.URL)
				assert.Equal(t, []string{FormatRawHTML}, req.Formats)

				_, _ = w.Write([]byte(`{"success":true,"data":{"rawHtml":"<html>ok</html>","metadata":{"sourceURL":"https://example.com","url":"https://example.com/","statusCode":200}}}`))
			},
			wantHTML: "<html>ok</html>",
		},
		{
			name: "auth error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
			},
			wantErr:    true,
			wantStatus: 401,
		},
		{
			name: "rate limited",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
			wantErr:    true,
			wantStatus: 429,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, tt.handler)
			resp, err := c.Scrape(context.Background(), ScrapeRequest{URL: "https://example.com", Formats: []string{FormatRawHTML}})

			if tt.wantErr {
				require.Error(t, err)
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
				return
			}
			require.NoError(t, err)
			assert.True(t, resp.Success)
			assert.Equal(t, tt.wantHTML, resp.Data.RawHTML)
			assert.Equal(t, 200, resp.Data.Metadata.StatusCode)
			assert.Equal(t, "https://example.com/", resp.Data.Metadata.URL)
		})
	}
}

func TestScrape_BadJSON(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})
	_, err := c.Scrape(context.Background(), ScrapeRequest{URL: "https://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestScrape_ErrorFieldBecomesMessage(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"success":false,"error":"Insufficient credits"}`))
	})
	_, err := c.Scrape(context.Background(), ScrapeRequest{URL: "https://example.com"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Insufficient credits", apiErr.Message)
	assert.Contains(t, apiErr.Body, `"success":false`)
	assert.Equal(t, "firecrawl: HTTP 402: Insufficient credits", apiErr.Error())
}

func TestScrape_ResponseCap(t *testing.T) {
	c := newTestServerWith(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"rawHtml":"` + strings.Repeat("x", 256) + `"}}`))
	}, Config{MaxResponseBytes: 64})

	_, err := c.Scrape(context.Background(), ScrapeRequest{URL: "https://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds 64 bytes")
}

func TestScrape_RequiresURL(t *testing.T) {
	var hits atomic.Int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})
	_, err := c.Scrape(context.Background(), ScrapeRequest{})
	require.Error(t, err)
	assert.Zero(t, hits.Load())
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("k", Config{}).(*restClient)
	assert.Equal(t, defaultBaseURL+"/scrape", c.endpoint)
	assert.Equal(t, int64(defaultMaxResponseBytes), c.maxBody)
	assert.Equal(t, defaultTimeout, c.hc.Timeout)

	hc := &http.Client{}
	c = NewClient("k", Config{BaseURL: "http://fc.local/v1/", Timeout: time.Second, HTTPClient: hc}).(*restClient)
	assert.Equal(t, "http://fc.local/v1/scrape", c.endpoint)
	assert.Same(t, hc, c.hc)
}

func TestAPIError_Message(t *testing.T) {
	err := &APIError{StatusCode: 402, Body: "payment required"}
	assert.Equal(t, "firecrawl: HTTP 402: payment required", err.Error())
}
