package model

import "encoding/json"

// CompanyProfile is the company-level view fetched once per company per
// pipeline run. EmployeeCount of zero means the vendor did not report a
// count; callers treat zero as "unknown", not as an empty company.
type CompanyProfile struct {
	Name          string `json:"name"`
	ID            string `json:"id"`
	Verified      bool   `json:"verified"`
	EmployeeCount int    `json:"employee_count"`
	Industry      string `json:"industry"`
	Found         bool   `json:"found"`
}

// EmployeeRecord is one person listed at a company. Only derived
// aggregates (contacts, the TA verdict) survive past a qualification
// decision; records themselves are never persisted.
type EmployeeRecord struct {
	FullName string          `json:"full_name"`
	Title    string          `json:"title"`
	Raw      json.RawMessage `json:"-"`
}
