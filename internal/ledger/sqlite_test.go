package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liac-group/recruit-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_SeenAfterMark(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	job := model.JobPosting{Title: "Backend Engineer", Company: "Acme", URL: "https://acme.com/j/1"}

	seen, err := st.Seen(ctx, Fingerprint(job))
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, st.MarkProcessed(ctx, NewRecord(job, "qualified")))

	seen, err = st.Seen(ctx, Fingerprint(job))
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestSQLite_MarkIsIdempotent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()
	job := model.JobPosting{Title: "Backend Engineer", Company: "Acme", URL: "https://acme.com/j/1"}

	require.NoError(t, st.MarkProcessed(ctx, NewRecord(job, "qualified")))
	require.NoError(t, st.MarkProcessed(ctx, NewRecord(job, "skipped")))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
}

func TestSQLite_StatsAndClear(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i, url := range []string{"https://a.com/1", "https://a.com/2", "https://a.com/3"} {
		rec := NewRecord(model.JobPosting{Title: "Engineer", Company: "A", URL: url}, "")
		rec.ProcessedAt = time.Date(2026, 8, 1+i, 12, 0, 0, 0, time.UTC)
		require.NoError(t, st.MarkProcessed(ctx, rec))
	}

	stats, err := st.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.True(t, stats.Oldest.Before(stats.Newest))

	n, err := st.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	stats, err = st.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
}

func TestSQLite_Blacklist(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	blocked, err := st.Blacklisted(ctx, "Umbrella Corp")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, st.AddToBlacklist(ctx, "Umbrella Corp", "existing client"))

	// Matching is case-insensitive.
	blocked, err = st.Blacklisted(ctx, "umbrella corp")
	require.NoError(t, err)
	assert.True(t, blocked)

	entries, err := st.ListBlacklist(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "umbrella corp", entries[0].Company)
	assert.Equal(t, "existing client", entries[0].Reason)

	require.NoError(t, st.RemoveFromBlacklist(ctx, "UMBRELLA CORP"))
	blocked, err = st.Blacklisted(ctx, "Umbrella Corp")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestSQLite_BlacklistUpsertKeepsOneRow(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddToBlacklist(ctx, "Acme", "first"))
	require.NoError(t, st.AddToBlacklist(ctx, "Acme", "second"))

	entries, err := st.ListBlacklist(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Reason)
}

func TestSQLite_SaveAndListLeads(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	leads := []model.Lead{
		{
			Name:      "Jordan Li",
			Title:     "Founder",
			Company:   "Acme",
			Email:     "jordan@acme.com",
			JobTitle:  "Backend Engineer",
			JobURL:    "https://acme.com/j/1",
			Score:     5,
			CreatedAt: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		},
		{
			Name:      "Sam Reyes",
			Title:     "CTO",
			Company:   "Widget Co",
			Email:     "sam@widget.com",
			JobTitle:  "Platform Engineer",
			JobURL:    "https://widget.com/j/2",
			Score:     5,
			CreatedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, st.SaveLeads(ctx, "run-1", leads))
	require.NoError(t, st.SaveLeads(ctx, "run-2", nil))

	got, err := st.ListLeads(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Sam Reyes", got[0].Name)
	assert.Equal(t, "Jordan Li", got[1].Name)

	all, err := st.ListLeads(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := st.ListLeads(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, none)
}
