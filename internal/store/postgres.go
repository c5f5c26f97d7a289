package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/schema-gap/internal/db"
	"github.com/sells-group/schema-gap/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const (
	getCachedPageSQL = `SELECT url_hash, page, cached_at, expires_at FROM page_cache WHERE url_hash = $1 AND expires_at > now()`
	getRunSQL        = `SELECT report FROM runs WHERE id = $1`
	deleteExpiredSQL = `DELETE FROM page_cache WHERE expires_at <= now()`
)

var (
	pageCacheUpsert = db.UpsertConfig{
		Table:        "page_cache",
		Columns:      []string{"url_hash", "page", "cached_at", "expires_at"},
		ConflictKeys: []string{"url_hash"},
	}
	runUpsert = db.UpsertConfig{
		Table:        "runs",
		Columns:      runColumns,
		ConflictKeys: []string{"id"},
	}
	runColumns = []string{
		"id", "target", "status", "competitors", "key_count",
		"opportunities", "warnings", "report", "created_at",
	}
)

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute
	// Statements are prepared once per connection and reused.
	pgxCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheStatement

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS page_cache (
	url_hash   TEXT PRIMARY KEY,
	page       JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	target        TEXT NOT NULL,
	status        TEXT NOT NULL,
	competitors   INTEGER NOT NULL DEFAULT 0,
	key_count     INTEGER NOT NULL DEFAULT 0,
	opportunities INTEGER NOT NULL DEFAULT 0,
	warnings      INTEGER NOT NULL DEFAULT 0,
	report        JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_page_cache_expires_at ON page_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) GetCachedPage(ctx context.Context, urlHash string) (*model.PageCache, error) {
	var pc model.PageCache
	var pageJSON []byte
	err := s.pool.QueryRow(ctx, getCachedPageSQL, urlHash).
		Scan(&pc.URLHash, &pageJSON, &pc.CachedAt, &pc.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached page")
	}
	if err := json.Unmarshal(pageJSON, &pc.Page); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached page")
	}
	return &pc, nil
}

func (s *PostgresStore) SetCachedPage(ctx context.Context, urlHash string, page model.FetchedPage, ttl time.Duration) error {
	pageJSON, err := json.Marshal(page)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal page")
	}
	now := time.Now().UTC()
	_, err = db.Upsert(ctx, s.pool, pageCacheUpsert, urlHash, pageJSON, now, now.Add(ttl))
	return eris.Wrap(err, "postgres: set cached page")
}

func (s *PostgresStore) DeleteExpiredPages(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, deleteExpiredSQL)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired pages")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, report *model.Report) error {
	if report == nil {
		return eris.New("postgres: save run: nil report")
	}
	prepareReport(report)

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal report")
	}
	sum := report.Summary()

	_, err = db.Upsert(ctx, s.pool, runUpsert,
		sum.ID, sum.Target, string(sum.Status), sum.Competitors, sum.Keys,
		sum.Opportunities, sum.Warnings, reportJSON, sum.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: save run %s", report.RunID)
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Report, error) {
	var reportJSON []byte
	err := s.pool.QueryRow(ctx, getRunSQL, runID).Scan(&reportJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	var r model.Report
	if err := json.Unmarshal(reportJSON, &r); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal report")
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.RunSummary, error) {
	query := `SELECT id, target, status, competitors, key_count, opportunities, warnings, created_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Target != "" {
		query += fmt.Sprintf(` AND target = $%d`, argIdx)
		args = append(args, filter.Target)
		argIdx++
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, argIdx)
	args = append(args, filter.limit())
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		var status string
		if err := rows.Scan(&r.ID, &r.Target, &status, &r.Competitors, &r.Keys,
			&r.Opportunities, &r.Warnings, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = model.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
