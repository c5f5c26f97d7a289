package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/schema-gap/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS page_cache (
	url_hash   TEXT PRIMARY KEY,
	page       TEXT NOT NULL,
	cached_at  DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	target        TEXT NOT NULL,
	status        TEXT NOT NULL,
	competitors   INTEGER NOT NULL DEFAULT 0,
	key_count     INTEGER NOT NULL DEFAULT 0,
	opportunities INTEGER NOT NULL DEFAULT 0,
	warnings      INTEGER NOT NULL DEFAULT 0,
	report        TEXT NOT NULL,
	created_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_page_cache_expires_at ON page_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetCachedPage(ctx context.Context, urlHash string) (*model.PageCache, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT url_hash, page, cached_at, expires_at FROM page_cache
		 WHERE url_hash = ? AND expires_at > ?`,
		urlHash, time.Now().UTC(),
	)

	var pc model.PageCache
	var pageJSON string
	err := row.Scan(&pc.URLHash, &pageJSON, &pc.CachedAt, &pc.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached page")
	}
	if err := json.Unmarshal([]byte(pageJSON), &pc.Page); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached page")
	}
	return &pc, nil
}

func (s *SQLiteStore) SetCachedPage(ctx context.Context, urlHash string, page model.FetchedPage, ttl time.Duration) error {
	now := time.Now().UTC()

	pageJSON, err := json.Marshal(page)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal page")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO page_cache (url_hash, page, cached_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (url_hash) DO UPDATE SET page = excluded.page,
		   cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		urlHash, string(pageJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached page")
}

func (s *SQLiteStore) DeleteExpiredPages(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM page_cache WHERE expires_at <= ?`, time.Now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired pages")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) SaveRun(ctx context.Context, report *model.Report) error {
	if report == nil {
		return eris.New("sqlite: save run: nil report")
	}
	prepareReport(report)

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal report")
	}
	sum := report.Summary()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, target, status, competitors, key_count, opportunities, warnings, report, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET target = excluded.target, status = excluded.status,
		   competitors = excluded.competitors, key_count = excluded.key_count,
		   opportunities = excluded.opportunities, warnings = excluded.warnings,
		   report = excluded.report`,
		sum.ID, sum.Target, string(sum.Status), sum.Competitors, sum.Keys,
		sum.Opportunities, sum.Warnings, string(reportJSON), sum.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: save run %s", report.RunID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Report, error) {
	var reportJSON string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE id = ?`, runID).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}

	var r model.Report
	if err := json.Unmarshal([]byte(reportJSON), &r); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal report")
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.RunSummary, error) {
	query := `SELECT id, target, status, competitors, key_count, opportunities, warnings, created_at
		FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Target != "" {
		query += ` AND target = ?`
		args = append(args, filter.Target)
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, filter.limit())

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer func() { _ = rows.Close() }()

	var runs []model.RunSummary
	for rows.Next() {
		var r model.RunSummary
		if err := rows.Scan(&r.ID, &r.Target, &r.Status, &r.Competitors, &r.Keys,
			&r.Opportunities, &r.Warnings, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// prepareReport assigns the run ID and creation time when the caller left
// them empty.
func prepareReport(r *model.Report) {
	if r.RunID == "" {
		r.RunID = uuid.New().String()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}
