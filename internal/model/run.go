package model

import "time"

// RunSummary aggregates the per-run counters reported by the summary
// event. Partial failures degrade the counts but never abort a run.
type RunSummary struct {
	RunID        string    `json:"run_id"`
	Query        string    `json:"query"`
	PostingsSeen int       `json:"postings_seen"`
	Qualified    int       `json:"qualified"`
	SkippedTA    int       `json:"skipped_ta"`
	Unresolved   int       `json:"unresolved"`
	EmailsFound  int       `json:"emails_found"`
	Errors       int       `json:"errors"`
	Cancelled    bool      `json:"cancelled,omitempty"`
	CampaignID   string    `json:"campaign_id,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}
