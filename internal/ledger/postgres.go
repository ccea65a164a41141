package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
)

// Pool is the pgxpool surface the ledger consumes, narrow enough for
// pgxmock to stand in during tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresLedger implements Ledger over a shared Postgres database, for
// teams whose runs dedup against each other.
type PostgresLedger struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS processed_jobs (
	fingerprint  TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	company      TEXT NOT NULL,
	url          TEXT NOT NULL,
	outcome      TEXT NOT NULL DEFAULT '',
	processed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_processed_jobs_company ON processed_jobs(company);
`

// NewPostgres creates a PostgresLedger with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresLedger, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
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

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresLedger{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests.
func NewPostgresFromPool(pool Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

func (p *PostgresLedger) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (p *PostgresLedger) Seen(ctx context.Context, fingerprint string) (bool, error) {
	var n int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(1) FROM processed_jobs WHERE fingerprint = $1`, fingerprint,
	).Scan(&n)
	if err != nil {
		return false, eris.Wrap(err, "postgres: query seen")
	}
	return n > 0, nil
}

func (p *PostgresLedger) MarkProcessed(ctx context.Context, rec Record) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO processed_jobs (fingerprint, title, company, url, outcome, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (fingerprint) DO NOTHING`,
		rec.Fingerprint, rec.Title, rec.Company, rec.URL, rec.Outcome, rec.ProcessedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: mark processed")
}

func (p *PostgresLedger) Stats(ctx context.Context) (Stats, error) {
	var (
		stats  Stats
		oldest *time.Time
		newest *time.Time
	)
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(1), MIN(processed_at), MAX(processed_at) FROM processed_jobs`,
	).Scan(&stats.Total, &oldest, &newest)
	if err != nil {
		return Stats{}, eris.Wrap(err, "postgres: query stats")
	}
	if oldest != nil {
		stats.Oldest = *oldest
	}
	if newest != nil {
		stats.Newest = *newest
	}
	return stats, nil
}

func (p *PostgresLedger) Clear(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM processed_jobs`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: clear")
	}
	return tag.RowsAffected(), nil
}

func (p *PostgresLedger) Close() error {
	p.pool.Close()
	return nil
}
