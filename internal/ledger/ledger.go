// Package ledger records which job postings have already been worked so
// reruns never pay for the same posting twice.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/liac-group/recruit-cli/internal/model"
)

// Record is one processed posting. Outcome is informational; presence of
// the fingerprint alone makes a posting "seen".
type Record struct {
	Fingerprint string    `json:"fingerprint"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	URL         string    `json:"url"`
	Outcome     string    `json:"outcome"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Stats summarizes ledger contents.
type Stats struct {
	Total  int64     `json:"total"`
	Oldest time.Time `json:"oldest,omitempty"`
	Newest time.Time `json:"newest,omitempty"`
}

// Ledger is the dedup store consulted before any paid lookup. Marking an
// already-present fingerprint is a no-op, not an error.
type Ledger interface {
	Seen(ctx context.Context, fingerprint string) (bool, error)
	MarkProcessed(ctx context.Context, rec Record) error
	Stats(ctx context.Context) (Stats, error)
	Clear(ctx context.Context) (int64, error)
	Close() error
}

// Fingerprint derives the stable identity of a posting from its title,
// company, and URL. Case and surrounding whitespace do not change it;
// descriptions and posting dates do not participate, so a reposted job
// with cosmetic edits still dedups.
func Fingerprint(job model.JobPosting) string {
	h := sha256.New()
	for _, part := range []string{job.Title, job.Company, job.URL} {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(part))))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// NewRecord builds the ledger entry for a posting.
func NewRecord(job model.JobPosting, outcome string) Record {
	return Record{
		Fingerprint: Fingerprint(job),
		Title:       job.Title,
		Company:     job.Company,
		URL:         job.URL,
		Outcome:     outcome,
		ProcessedAt: time.Now().UTC(),
	}
}
