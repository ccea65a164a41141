package model

// JobPosting is a single posting returned by the job-retrieval API.
// Immutable once retrieved; identity for dedup purposes is derived from
// (Title, Company, URL).
type JobPosting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	URL         string `json:"job_url"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	Website     string `json:"website,omitempty"`
	PostedHours int    `json:"posted_hours,omitempty"`
}

// SearchParams are the structured parameters extracted from a
// natural-language job-search query.
type SearchParams struct {
	SearchTerm  string   `json:"search_term"`
	Locations   []string `json:"locations"`
	Keywords    []string `json:"keywords,omitempty"`
	MaxAgeHours int      `json:"max_age_hours,omitempty"`
}
