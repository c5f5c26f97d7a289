// Package store persists fetched pages and comparison runs.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/schema-gap/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = eris.New("store: not found")

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Target string          `json:"target,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

const defaultListLimit = 100

func (f RunFilter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}

// Store defines the persistence interface for page fetches and comparison runs.
type Store interface {
	// Page cache
	GetCachedPage(ctx context.Context, urlHash string) (*model.PageCache, error)
	SetCachedPage(ctx context.Context, urlHash string, page model.FetchedPage, ttl time.Duration) error
	DeleteExpiredPages(ctx context.Context) (int, error)

	// Runs
	SaveRun(ctx context.Context, report *model.Report) error
	GetRun(ctx context.Context, runID string) (*model.Report, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.RunSummary, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// HashURL returns the cache key for a page URL.
func HashURL(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return hex.EncodeToString(sum[:])
}
