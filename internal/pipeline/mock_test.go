package pipeline

import (
	"context"
	"sync"

	"github.com/liac-group/recruit-cli/internal/emails"
	"github.com/liac-group/recruit-cli/internal/events"
	"github.com/liac-group/recruit-cli/internal/ledger"
	"github.com/liac-group/recruit-cli/internal/model"
	"github.com/liac-group/recruit-cli/internal/qualify"
	"github.com/liac-group/recruit-cli/pkg/instantly"
	"github.com/liac-group/recruit-cli/pkg/jsearch"
)

type mockSearch struct {
	jobsByCity map[string][]jsearch.Job
	err        error
	calls      []string
}

func (m *mockSearch) Search(_ context.Context, req jsearch.SearchRequest) ([]jsearch.Job, error) {
	m.calls = append(m.calls, req.Location)
	if m.err != nil {
		return nil, m.err
	}
	return m.jobsByCity[req.Location], nil
}

type mockDiscoverer struct {
	results map[string]*qualify.Result
	err     error
	onCall  func(company string)
	calls   []string
}

func (m *mockDiscoverer) Discover(_ context.Context, company, _ string, _ []string) (*qualify.Result, error) {
	m.calls = append(m.calls, company)
	if m.onCall != nil {
		m.onCall(company)
	}
	if m.err != nil {
		return nil, m.err
	}
	if r, ok := m.results[company]; ok {
		return r, nil
	}
	return &qualify.Result{}, nil
}

type mockEmailFinder struct {
	emails  map[string][]model.EmailResult
	err     error
	calls   []string
	queries []emails.Query
}

func (m *mockEmailFinder) FindEmails(_ context.Context, q emails.Query) ([]model.EmailResult, error) {
	m.calls = append(m.calls, q.Company)
	m.queries = append(m.queries, q)
	if m.err != nil {
		return nil, m.err
	}
	return m.emails[q.Company], nil
}

type mockBlacklist struct {
	blocked map[string]bool
	calls   []string
}

func (m *mockBlacklist) Blacklisted(_ context.Context, company string) (bool, error) {
	m.calls = append(m.calls, company)
	return m.blocked[normalizeKey(company)], nil
}

func (m *mockBlacklist) AddToBlacklist(_ context.Context, company, _ string) error {
	if m.blocked == nil {
		m.blocked = make(map[string]bool)
	}
	m.blocked[normalizeKey(company)] = true
	return nil
}

func (m *mockBlacklist) RemoveFromBlacklist(_ context.Context, company string) error {
	delete(m.blocked, normalizeKey(company))
	return nil
}

func (m *mockBlacklist) ListBlacklist(_ context.Context) ([]ledger.BlacklistEntry, error) {
	return nil, nil
}

type mockSaver struct {
	runID string
	leads []model.Lead
	err   error
}

func (m *mockSaver) SaveLeads(_ context.Context, runID string, leads []model.Lead) error {
	m.runID = runID
	m.leads = leads
	return m.err
}

type mockOutreach struct {
	campaignID string
	createErr  error
	addErr     error
	created    []string
	added      []instantly.Lead
}

func (m *mockOutreach) CreateCampaign(_ context.Context, name string) (string, error) {
	m.created = append(m.created, name)
	if m.createErr != nil {
		return "", m.createErr
	}
	return m.campaignID, nil
}

func (m *mockOutreach) AddLeads(_ context.Context, _ string, leads []instantly.Lead) error {
	m.added = append(m.added, leads...)
	return m.addErr
}

// captureSink records emitted events for assertions.
type captureSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *captureSink) Emit(_ context.Context, ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *captureSink) byStage(stage string) []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.Event
	for _, ev := range s.events {
		if ev.Stage == stage {
			out = append(out, ev)
		}
	}
	return out
}

func targetResult(contacts ...model.Contact) *qualify.Result {
	return &qualify.Result{
		CompanyFound: true,
		Contacts:     contacts,
		Profile:      &model.CompanyProfile{Found: true},
	}
}

func skipResult(reason string) *qualify.Result {
	return &qualify.Result{
		CompanyFound: true,
		Verdict:      model.TAVerdict{HasTATeam: true, Reason: reason},
		Profile:      &model.CompanyProfile{Found: true},
	}
}

func job(title, company, url string) jsearch.Job {
	return jsearch.Job{Title: title, Company: company, URL: url}
}
