package model

import "time"

// FetchedPage is the raw markup returned for one source.
type FetchedPage struct {
	URL        string    `json:"url"`
	FinalURL   string    `json:"final_url,omitempty"`
	HTML       string    `json:"html"`
	StatusCode int       `json:"status_code"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// PageCache is a cached fetch keyed by URL hash.
type PageCache struct {
	URLHash   string      `json:"url_hash"`
	Page      FetchedPage `json:"page"`
	CachedAt  time.Time   `json:"cached_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}
