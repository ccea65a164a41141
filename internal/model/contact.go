package model

import "time"

// Contact is a scored decision-maker candidate at a target company,
// ordered by Score descending within one company's candidate set. Scores
// are only comparable within a single company.
type Contact struct {
	FullName string  `json:"full_name"`
	Title    string  `json:"title"`
	Company  string  `json:"company"`
	Score    float64 `json:"score"`
}

// EmailResult is a verified address returned by the email finder. Results
// with Confidence of 50 or below are discarded before they reach callers.
type EmailResult struct {
	Email       string `json:"email"`
	Confidence  int    `json:"confidence"`
	Position    string `json:"position,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
}

// Lead is a qualified contact with a verified email, ready for campaign
// handoff.
type Lead struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	JobTitle  string    `json:"job_title"`
	JobURL    string    `json:"job_url"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
