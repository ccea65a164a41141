package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/liac-group/recruit-cli/internal/ledger"
)

// openStore opens the local SQLite store. Blacklist entries and saved
// leads always live here, whatever driver backs the dedup ledger.
func openStore(ctx context.Context) (*ledger.SQLiteStore, error) {
	st, err := ledger.NewSQLite(cfg.Ledger.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// openLedger returns the dedup ledger for the configured driver. For
// sqlite it shares the local store.
func openLedger(ctx context.Context, st *ledger.SQLiteStore) (ledger.Ledger, error) {
	switch cfg.Ledger.Driver {
	case "", "sqlite":
		return st, nil
	case "postgres":
		pg, err := ledger.NewPostgres(ctx, cfg.Ledger.DatabaseURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "open postgres ledger")
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close() //nolint:errcheck
			return nil, eris.Wrap(err, "migrate postgres ledger")
		}
		return pg, nil
	case "memory":
		return ledger.NewMemory(), nil
	default:
		return nil, eris.Errorf("unknown ledger driver %q", cfg.Ledger.Driver)
	}
}
