package ledger

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/liac-group/recruit-cli/internal/model"
)

// Blacklist holds companies that must never reach a paid lookup.
type Blacklist interface {
	Blacklisted(ctx context.Context, company string) (bool, error)
	AddToBlacklist(ctx context.Context, company, reason string) error
	RemoveFromBlacklist(ctx context.Context, company string) error
	ListBlacklist(ctx context.Context) ([]BlacklistEntry, error)
}

// BlacklistEntry is one blocked company.
type BlacklistEntry struct {
	Company string    `json:"company"`
	Reason  string    `json:"reason,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// SQLiteStore implements Ledger and Blacklist using modernc.org/sqlite,
// and keeps generated leads for later export.
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS processed_jobs (
	fingerprint  TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	company      TEXT NOT NULL,
	url          TEXT NOT NULL,
	outcome      TEXT NOT NULL DEFAULT '',
	processed_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS blacklist (
	company  TEXT PRIMARY KEY,
	reason   TEXT NOT NULL DEFAULT '',
	added_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS leads (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	name       TEXT NOT NULL,
	title      TEXT NOT NULL,
	company    TEXT NOT NULL,
	email      TEXT NOT NULL,
	job_title  TEXT NOT NULL,
	job_url    TEXT NOT NULL,
	score      REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_processed_jobs_company ON processed_jobs(company);
CREATE INDEX IF NOT EXISTS idx_leads_run_id ON leads(run_id);
CREATE INDEX IF NOT EXISTS idx_leads_company ON leads(company);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Seen(ctx context.Context, fingerprint string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM processed_jobs WHERE fingerprint = ?`, fingerprint,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: query seen")
	}
	return n > 0, nil
}

func (s *SQLiteStore) MarkProcessed(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processed_jobs (fingerprint, title, company, url, outcome, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (fingerprint) DO NOTHING`,
		rec.Fingerprint, rec.Title, rec.Company, rec.URL, rec.Outcome, rec.ProcessedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: mark processed")
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var (
		stats  Stats
		oldest sql.NullTime
		newest sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1), MIN(processed_at), MAX(processed_at) FROM processed_jobs`,
	).Scan(&stats.Total, &oldest, &newest)
	if err != nil {
		return Stats{}, eris.Wrap(err, "sqlite: query stats")
	}
	if oldest.Valid {
		stats.Oldest = oldest.Time
	}
	if newest.Valid {
		stats.Newest = newest.Time
	}
	return stats, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM processed_jobs`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: clear")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return n, nil
}

func (s *SQLiteStore) Blacklisted(ctx context.Context, company string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM blacklist WHERE company = ?`, normalizeCompany(company),
	).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "sqlite: query blacklist")
	}
	return n > 0, nil
}

func (s *SQLiteStore) AddToBlacklist(ctx context.Context, company, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO blacklist (company, reason, added_at) VALUES (?, ?, ?)
		 ON CONFLICT (company) DO UPDATE SET reason = excluded.reason`,
		normalizeCompany(company), reason, time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: add to blacklist")
}

func (s *SQLiteStore) RemoveFromBlacklist(ctx context.Context, company string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM blacklist WHERE company = ?`, normalizeCompany(company),
	)
	return eris.Wrap(err, "sqlite: remove from blacklist")
}

func (s *SQLiteStore) ListBlacklist(ctx context.Context) ([]BlacklistEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT company, reason, added_at FROM blacklist ORDER BY company`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list blacklist")
	}
	defer rows.Close() //nolint:errcheck

	var entries []BlacklistEntry
	for rows.Next() {
		var e BlacklistEntry
		if err := rows.Scan(&e.Company, &e.Reason, &e.AddedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan blacklist row")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: iterate blacklist")
}

// SaveLeads records the leads produced by one run.
func (s *SQLiteStore) SaveLeads(ctx context.Context, runID string, leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for _, l := range leads {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO leads (run_id, name, title, company, email, job_title, job_url, score, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, l.Name, l.Title, l.Company, l.Email, l.JobTitle, l.JobURL, l.Score, l.CreatedAt.UTC(),
		)
		if err != nil {
			return eris.Wrap(err, "sqlite: insert lead")
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit leads")
}

// ListLeads returns stored leads, newest first. Empty runID means all runs.
func (s *SQLiteStore) ListLeads(ctx context.Context, runID string) ([]model.Lead, error) {
	query := `SELECT name, title, company, email, job_title, job_url, score, created_at FROM leads`
	args := []any{}
	if runID != "" {
		query += ` WHERE run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list leads")
	}
	defer rows.Close() //nolint:errcheck

	var leads []model.Lead
	for rows.Next() {
		var l model.Lead
		if err := rows.Scan(&l.Name, &l.Title, &l.Company, &l.Email, &l.JobTitle, &l.JobURL, &l.Score, &l.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead row")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func normalizeCompany(company string) string {
	return strings.ToLower(strings.TrimSpace(company))
}
