package pipeline

import "sync"

// companyCache memoizes per-company qualification outcomes for the
// lifetime of a single run. Two postings from the same employer in one
// run share the first posting's result instead of paying for a second
// directory lookup. The cache dies with the run; nothing in it carries
// into the next one.
type companyCache struct {
	mu      sync.Mutex
	entries map[string]*companyOutcome
}

// companyOutcome is the cached result of qualifying one company.
type companyOutcome struct {
	Kind        outcomeKind
	Reason      string
	Leads       []leadCandidate
	EmailsFound int
}

// outcomeKind is the typed branch a company qualification lands in.
type outcomeKind int

const (
	outcomeQualified outcomeKind = iota
	outcomeSkippedTA
	outcomeUnresolved
	outcomeBlacklisted
	outcomeFailed
)

// leadCandidate pairs a discovered email with its contact context,
// before a specific job posting is attached.
type leadCandidate struct {
	Name  string
	Title string
	Email string
	Score float64
}

func newCompanyCache() *companyCache {
	return &companyCache{entries: make(map[string]*companyOutcome)}
}

func (c *companyCache) get(company string) (*companyOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out, ok := c.entries[normalizeKey(company)]
	return out, ok
}

func (c *companyCache) put(company string, out *companyOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[normalizeKey(company)] = out
}

func (c *companyCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
