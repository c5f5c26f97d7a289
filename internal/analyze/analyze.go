// Package analyze runs a comparison: it loads the target and competitor
// pages, extracts their JSON-LD, diffs the pair sets and records the run.
package analyze

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sells-group/schema-gap/internal/jsonld"
	"github.com/sells-group/schema-gap/internal/model"
	"github.com/sells-group/schema-gap/internal/schema"
	"github.com/sells-group/schema-gap/internal/scrape"
	"github.com/sells-group/schema-gap/internal/store"
)

// TargetName labels the reference page in reports.
const TargetName = "Target"

// ErrNoTarget is returned when a request has no target source.
var ErrNoTarget = eris.New("analyze: target source is required")

// Options tunes an Analyzer.
type Options struct {
	// MaxConcurrent bounds parallel source loads. Default: 4.
	MaxConcurrent int

	// CacheTTL is how long fetched pages stay in the store cache. Zero
	// disables the cache.
	CacheTTL time.Duration

	// FetchTimeout bounds one shared fetch. It runs detached from the
	// requests waiting on it, so a caller going away does not cut it short
	// for the others. Default: 2m.
	FetchTimeout time.Duration

	// AllowLocalFiles lets URL fields name local files. Only the CLI sets
	// it; sources arriving over the network must never read the disk.
	AllowLocalFiles bool
}

const defaultFetchTimeout = 2 * time.Minute

// Request describes one comparison.
type Request struct {
	Target      model.Source   `json:"target"`
	Competitors []model.Source `json:"competitors"`
	Names       []string       `json:"names,omitempty"`
	NoCache     bool           `json:"no_cache,omitempty"`
}

// Analyzer orchestrates a comparison run.
type Analyzer struct {
	scraper scrape.Scraper
	store   store.Store
	opts    Options
	fetches singleflight.Group
}

// New creates an Analyzer. scraper and st may be nil: without a scraper only
// literal sources load, without a store nothing is cached or recorded.
func New(scraper scrape.Scraper, st store.Store, opts Options) *Analyzer {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return &Analyzer{scraper: scraper, store: st, opts: opts}
}

// loaded is the outcome of loading one source.
type loaded struct {
	summary  model.SourceSummary
	pairs    schema.PairSet
	warnings []model.SourceWarning
}

// Run executes the comparison described by req. Per-source failures become
// warnings on the report; only a missing target or a cancelled context fail
// the run.
func (a *Analyzer) Run(ctx context.Context, req Request) (*model.Report, error) {
	if req.Target.IsZero() {
		return nil, ErrNoTarget
	}

	start := time.Now()
	names := schema.CompetitorNames(req.Names, len(req.Competitors))
	log := zap.L().With(
		zap.String("target", req.Target.Label()),
		zap.Int("competitors", len(req.Competitors)),
	)
	log.Info("analyze: starting comparison")

	sources := make([]model.Source, 0, len(req.Competitors)+1)
	sources = append(sources, req.Target)
	sources = append(sources, req.Competitors...)

	results := make([]loaded, len(sources))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.MaxConcurrent)
	for i, src := range sources {
		name, role := TargetName, model.RoleTarget
		if i > 0 {
			name, role = names[i-1], model.RoleCompetitor
		}
		g.Go(func() error {
			results[i] = a.load(gCtx, src, name, role, req.NoCache)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "analyze: run cancelled")
	}

	comps := make([]schema.PairSet, len(req.Competitors))
	report := &model.Report{
		RunID:       uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		Target:      results[0].summary,
		Competitors: make([]model.SourceSummary, len(req.Competitors)),
	}
	for i, res := range results {
		report.Warnings = append(report.Warnings, res.warnings...)
		if i == 0 {
			continue
		}
		comps[i-1] = res.pairs
		report.Competitors[i-1] = res.summary
	}

	cmp, err := schema.Compare(results[0].pairs, comps, names)
	if err != nil {
		return nil, eris.Wrap(err, "analyze: compare")
	}
	report.Comparison = *cmp
	report.Templates = schema.GenerateTemplates(cmp.Opportunities)

	if a.store != nil {
		if err := a.store.SaveRun(ctx, report); err != nil {
			log.Warn("analyze: failed to save run", zap.String("run_id", report.RunID), zap.Error(err))
		}
	}

	log.Info("analyze: comparison complete",
		zap.String("run_id", report.RunID),
		zap.String("status", string(report.Status())),
		zap.Int("keys", len(cmp.Rows)),
		zap.Int("opportunities", len(cmp.Opportunities)),
		zap.Int("warnings", len(report.Warnings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// load turns one source into its pair set. It never fails: problems are
// recorded as warnings and the source contributes what could be read.
func (a *Analyzer) load(ctx context.Context, src model.Source, name string, role model.SourceRole, noCache bool) loaded {
	out := loaded{
		summary: model.SourceSummary{
			Name:  name,
			Role:  role,
			Input: src.Label(),
			Kind:  src.Kind(),
		},
		pairs: schema.NewPairSet(),
	}
	warn := func(stage model.WarningStage, err error) {
		out.warnings = append(out.warnings, model.SourceWarning{
			Source:  name,
			Stage:   stage,
			Message: err.Error(),
		})
		zap.L().Warn("analyze: source problem",
			zap.String("source", name),
			zap.String("input", src.Label()),
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
	}

	var docs []schema.Document
	var extractErrs []error

	switch src.Kind() {
	case model.InputJSONLD:
		var err error
		docs, err = jsonld.ParseJSON([]byte(src.JSON))
		if err != nil {
			extractErrs = append(extractErrs, err)
		}
	case model.InputHTML:
		docs, extractErrs = jsonld.Extract([]byte(src.HTML))
	default:
		html, literal, err := scrape.LiteralSource(src.URL, a.opts.AllowLocalFiles)
		switch {
		case err != nil:
			warn(model.StageFetch, err)
			return out
		case literal:
			out.summary.Kind = model.InputHTML
		default:
			page, fromCache, fetcher, err := a.fetch(ctx, src.URL, noCache)
			if err != nil {
				warn(model.StageFetch, err)
				return out
			}
			html = page.HTML
			out.summary.FromCache = fromCache
			out.summary.Fetcher = fetcher
		}
		docs, extractErrs = jsonld.Extract([]byte(html))
	}

	for _, err := range extractErrs {
		warn(model.StageExtract, err)
	}

	out.pairs = schema.FlattenAll(docs)
	out.summary.Documents = len(docs)
	out.summary.Pairs = out.pairs.Len()
	return out
}

type fetchResult struct {
	page      model.FetchedPage
	fromCache bool
	fetcher   string
}

// fetch returns the page for rawURL from the store cache or the scraper.
// Concurrent loads of the same URL within a process share one fetch; each
// caller stops waiting when its own ctx is done.
func (a *Analyzer) fetch(ctx context.Context, rawURL string, noCache bool) (model.FetchedPage, bool, string, error) {
	u, err := scrape.NormalizeURL(rawURL)
	if err != nil {
		return model.FetchedPage{}, false, "", err
	}

	key := u
	if noCache {
		key = "nocache:" + u
	}
	ch := a.fetches.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.opts.FetchTimeout)
		defer cancel()
		return a.fetchOnce(fetchCtx, u, noCache)
	})

	select {
	case <-ctx.Done():
		return model.FetchedPage{}, false, "", eris.Wrapf(ctx.Err(), "analyze: fetch %s", u)
	case res := <-ch:
		if res.Err != nil {
			return model.FetchedPage{}, false, "", res.Err
		}
		fr := res.Val.(*fetchResult)
		return fr.page, fr.fromCache, fr.fetcher, nil
	}
}

func (a *Analyzer) fetchOnce(ctx context.Context, u string, noCache bool) (*fetchResult, error) {
	useCache := a.store != nil && a.opts.CacheTTL > 0
	hash := store.HashURL(u)

	if useCache && !noCache {
		cached, err := a.store.GetCachedPage(ctx, hash)
		if err != nil {
			zap.L().Warn("analyze: cache read failed", zap.String("url", u), zap.Error(err))
		} else if cached != nil {
			zap.L().Debug("analyze: cache hit", zap.String("url", u))
			return &fetchResult{page: cached.Page, fromCache: true, fetcher: "cache"}, nil
		}
	}

	if a.scraper == nil {
		return nil, eris.Errorf("analyze: no fetcher configured for %s", u)
	}
	res, err := a.scraper.Scrape(ctx, u)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, eris.Errorf("analyze: fetcher returned no page for %s", u)
	}

	if useCache {
		if err := a.store.SetCachedPage(ctx, hash, res.Page, a.opts.CacheTTL); err != nil {
			zap.L().Warn("analyze: cache write failed", zap.String("url", u), zap.Error(err))
		}
	}
	return &fetchResult{page: res.Page, fetcher: res.Source}, nil
}
