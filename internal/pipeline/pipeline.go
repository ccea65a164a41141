// Package pipeline drives a full lead-hunting run: job search per city,
// company qualification, email discovery, and campaign handoff, with a
// dedup ledger consulted before any paid lookup.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/liac-group/recruit-cli/internal/emails"
	"github.com/liac-group/recruit-cli/internal/events"
	"github.com/liac-group/recruit-cli/internal/ledger"
	"github.com/liac-group/recruit-cli/internal/model"
	"github.com/liac-group/recruit-cli/internal/qualify"
	"github.com/liac-group/recruit-cli/internal/resilience"
	"github.com/liac-group/recruit-cli/internal/runs"
	"github.com/liac-group/recruit-cli/pkg/instantly"
	"github.com/liac-group/recruit-cli/pkg/jsearch"
)

// Discoverer qualifies one company and returns its ranked contacts.
type Discoverer interface {
	Discover(ctx context.Context, company, roleHint string, keywords []string) (*qualify.Result, error)
}

// EmailFinder locates verified addresses for a qualified company.
type EmailFinder interface {
	FindEmails(ctx context.Context, q emails.Query) ([]model.EmailResult, error)
}

// LeadSaver persists the leads a run produces.
type LeadSaver interface {
	SaveLeads(ctx context.Context, runID string, leads []model.Lead) error
}

// Options tune run behavior.
type Options struct {
	MaxJobsPerCity  int
	MaxLeadsPerRun  int
	CompanyDelay    time.Duration
	CityDelay       time.Duration
	CampaignHandoff bool

	// Retry governs job-search attempts; a zero MaxAttempts selects the
	// default policy.
	Retry resilience.RetryConfig

	// Breaker governs the email-discovery circuit; a zero
	// FailureThreshold selects the default policy.
	Breaker resilience.CircuitBreakerConfig
}

// Orchestrator owns one run at a time. It is cheap to construct; hold
// one per concurrent run.
type Orchestrator struct {
	search    jsearch.Client
	discover  Discoverer
	finder    EmailFinder
	ledger    ledger.Ledger
	blacklist ledger.Blacklist
	saver     LeadSaver
	sink      events.Sink
	registry  *runs.Registry
	outreach  instantly.Client
	opts      Options

	// emailBreaker stops email spend for the rest of a window when the
	// finder keeps failing; a tripped breaker degrades companies to
	// "qualified, zero leads" instead of erroring each one.
	emailBreaker *resilience.CircuitBreaker

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an Orchestrator. Blacklist, saver, and outreach are
// optional; a nil sink falls back to process logs.
func New(
	search jsearch.Client,
	discover Discoverer,
	finder EmailFinder,
	l ledger.Ledger,
	registry *runs.Registry,
	sink events.Sink,
	opts Options,
) *Orchestrator {
	if sink == nil {
		sink = events.NewLogSink()
	}
	if opts.MaxJobsPerCity <= 0 {
		opts.MaxJobsPerCity = 25
	}
	if opts.MaxLeadsPerRun <= 0 {
		opts.MaxLeadsPerRun = 100
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = resilience.DefaultRetryConfig()
	}
	breakerCfg := opts.Breaker
	if breakerCfg.FailureThreshold <= 0 {
		breakerCfg = resilience.DefaultCircuitBreakerConfig()
	}
	breakerCfg.ShouldTrip = func(err error) bool {
		return !errors.Is(err, context.Canceled)
	}

	return &Orchestrator{
		search:       search,
		discover:     discover,
		finder:       finder,
		ledger:       l,
		registry:     registry,
		sink:         sink,
		opts:         opts,
		emailBreaker: resilience.NewCircuitBreaker("email-discovery", breakerCfg),
		sleep:        sleepCtx,
	}
}

// WithBlacklist attaches a company blacklist checked before any paid
// lookup.
func (o *Orchestrator) WithBlacklist(b ledger.Blacklist) *Orchestrator {
	o.blacklist = b
	return o
}

// WithLeadSaver attaches persistent lead storage.
func (o *Orchestrator) WithLeadSaver(s LeadSaver) *Orchestrator {
	o.saver = s
	return o
}

// WithOutreach attaches the campaign client used when handoff is on.
func (o *Orchestrator) WithOutreach(c instantly.Client) *Orchestrator {
	o.outreach = c
	return o
}

// Run executes one full hunt. It always returns a summary, partial when
// cancelled mid-run; per-company failures are counted, not propagated.
func (o *Orchestrator) Run(ctx context.Context, runID string, params model.SearchParams) (*model.RunSummary, error) {
	log := zap.L().With(
		zap.String("run_id", runID),
		zap.String("query", params.SearchTerm))

	o.registry.Register(runID, params.SearchTerm)
	defer o.registry.Forget(runID)

	summary := &model.RunSummary{
		RunID:     runID,
		Query:     params.SearchTerm,
		StartedAt: time.Now().UTC(),
	}
	cache := newCompanyCache()
	var leads []model.Lead

	o.emit(ctx, runID, "run", events.LevelInfo, "run started", map[string]any{
		"query":  params.SearchTerm,
		"cities": params.Locations,
	})

	cities := params.Locations
	if len(cities) == 0 {
		cities = []string{""}
	}

cityLoop:
	for i, city := range cities {
		if o.cancelled(ctx, runID) {
			break
		}
		if i > 0 && o.opts.CityDelay > 0 {
			if err := o.sleep(ctx, o.opts.CityDelay); err != nil {
				break
			}
		}

		jobs, err := o.searchCity(ctx, params, city)
		if err != nil {
			log.Error("job search failed", zap.String("city", city), zap.Error(err))
			summary.Errors++
			o.emit(ctx, runID, "search", events.LevelError, "job search failed", map[string]any{
				"city": city,
			})
			continue
		}
		o.emit(ctx, runID, "search", events.LevelInfo, "job search finished", map[string]any{
			"city":     city,
			"postings": len(jobs),
		})

		for j, job := range jobs {
			if o.cancelled(ctx, runID) {
				break cityLoop
			}
			if j > 0 && o.opts.CompanyDelay > 0 {
				if err := o.sleep(ctx, o.opts.CompanyDelay); err != nil {
					break cityLoop
				}
			}

			summary.PostingsSeen++
			o.processPosting(ctx, runID, job, params, summary, cache, &leads)

			if len(leads) >= o.opts.MaxLeadsPerRun {
				log.Info("lead cap reached", zap.Int("leads", len(leads)))
				break cityLoop
			}
		}
	}

	if o.cancelled(ctx, runID) {
		summary.Cancelled = true
		o.emit(ctx, runID, "run", events.LevelWarn, "run cancelled", nil)
	}

	o.persistLeads(ctx, runID, leads, summary)
	o.handoff(ctx, runID, params, leads, summary)

	summary.FinishedAt = time.Now().UTC()
	o.emit(ctx, runID, "run", events.LevelInfo, "run finished", map[string]any{
		"postings_seen": summary.PostingsSeen,
		"qualified":     summary.Qualified,
		"skipped_ta":    summary.SkippedTA,
		"unresolved":    summary.Unresolved,
		"emails_found":  summary.EmailsFound,
		"errors":        summary.Errors,
	})
	log.Info("run complete",
		zap.Int("postings", summary.PostingsSeen),
		zap.Int("qualified", summary.Qualified),
		zap.Int("leads", len(leads)))

	return summary, nil
}

func (o *Orchestrator) searchCity(ctx context.Context, params model.SearchParams, city string) ([]jsearch.Job, error) {
	retry := o.opts.Retry
	retry.OnRetry = resilience.RetryLogger("jsearch", "search")

	return resilience.DoVal(ctx, retry, func(ctx context.Context) ([]jsearch.Job, error) {
		jobs, err := o.search.Search(ctx, jsearch.SearchRequest{
			Query:       params.SearchTerm,
			Location:    city,
			MaxAgeHours: params.MaxAgeHours,
		})
		if err != nil {
			return nil, err
		}
		if len(jobs) > o.opts.MaxJobsPerCity {
			jobs = jobs[:o.opts.MaxJobsPerCity]
		}
		return jobs, nil
	})
}

// processPosting runs one posting through dedup, blacklist, company
// qualification, and email discovery. A panic in any stage is contained
// here so one malformed posting cannot end the run.
func (o *Orchestrator) processPosting(
	ctx context.Context,
	runID string,
	job jsearch.Job,
	params model.SearchParams,
	summary *model.RunSummary,
	cache *companyCache,
	leads *[]model.Lead,
) {
	log := zap.L().With(
		zap.String("run_id", runID),
		zap.String("company", job.Company),
		zap.String("title", job.Title))

	defer func() {
		if r := recover(); r != nil {
			summary.Errors++
			log.Error("posting processing panicked", zap.Any("panic", r))
		}
	}()

	posting := model.JobPosting{
		Title:       job.Title,
		Company:     job.Company,
		URL:         job.URL,
		Description: job.Description,
		Location:    strings.TrimSpace(strings.Join(nonEmpty(job.City, job.State), ", ")),
		Website:     job.Website,
	}
	fp := ledger.Fingerprint(posting)

	seen, err := o.ledger.Seen(ctx, fp)
	if err != nil {
		summary.Errors++
		log.Error("ledger lookup failed", zap.Error(err))
		return
	}
	if seen {
		log.Debug("posting already processed")
		return
	}

	outcome, fromCache := o.qualifyCompany(ctx, runID, posting, params, summary, cache)

	// A company already decided this run contributes leads only once;
	// further postings from it are marked processed and nothing more.
	if fromCache {
		rec := ledger.NewRecord(posting, outcomeName(outcome.Kind))
		if err := o.ledger.MarkProcessed(ctx, rec); err != nil {
			summary.Errors++
			log.Error("ledger write failed", zap.Error(err))
		}
		return
	}

	for _, cand := range outcome.Leads {
		if len(*leads) >= o.opts.MaxLeadsPerRun {
			break
		}
		*leads = append(*leads, model.Lead{
			Name:      cand.Name,
			Title:     cand.Title,
			Company:   posting.Company,
			Email:     cand.Email,
			JobTitle:  posting.Title,
			JobURL:    posting.URL,
			Score:     cand.Score,
			CreatedAt: time.Now().UTC(),
		})
	}

	// The posting is marked processed whatever the outcome, so a rerun
	// after a partial failure does not re-bill the same posting.
	rec := ledger.NewRecord(posting, outcomeName(outcome.Kind))
	if err := o.ledger.MarkProcessed(ctx, rec); err != nil {
		summary.Errors++
		log.Error("ledger write failed", zap.Error(err))
	}
}

// qualifyCompany resolves the typed outcome for one company, memoized
// per run. The second return reports a cache hit, so callers can tell a
// fresh decision from a repeat of one already acted on.
func (o *Orchestrator) qualifyCompany(
	ctx context.Context,
	runID string,
	posting model.JobPosting,
	params model.SearchParams,
	summary *model.RunSummary,
	cache *companyCache,
) (*companyOutcome, bool) {
	log := zap.L().With(zap.String("company", posting.Company))

	if cached, ok := cache.get(posting.Company); ok {
		log.Debug("company outcome cached this run")
		return cached, true
	}

	outcome := o.qualifyFresh(ctx, runID, posting, params, summary)
	cache.put(posting.Company, outcome)

	switch outcome.Kind {
	case outcomeQualified:
		summary.Qualified++
		summary.EmailsFound += outcome.EmailsFound
	case outcomeSkippedTA:
		summary.SkippedTA++
	case outcomeUnresolved:
		summary.Unresolved++
	case outcomeFailed:
		summary.Errors++
	}

	o.emit(ctx, runID, "qualify", events.LevelInfo, "company decided", map[string]any{
		"company": posting.Company,
		"outcome": outcomeName(outcome.Kind),
		"reason":  outcome.Reason,
	})
	return outcome, false
}

func (o *Orchestrator) qualifyFresh(
	ctx context.Context,
	runID string,
	posting model.JobPosting,
	params model.SearchParams,
	summary *model.RunSummary,
) *companyOutcome {
	log := zap.L().With(zap.String("company", posting.Company))

	// Blacklist runs first: a blocked company must never reach a paid
	// lookup.
	if o.blacklist != nil {
		blocked, err := o.blacklist.Blacklisted(ctx, posting.Company)
		if err != nil {
			log.Warn("blacklist check failed", zap.Error(err))
		} else if blocked {
			log.Info("company blacklisted")
			return &companyOutcome{Kind: outcomeBlacklisted, Reason: "blacklisted"}
		}
	}

	result, err := o.discover.Discover(ctx, posting.Company, params.SearchTerm, params.Keywords)
	if err != nil {
		log.Error("company discovery failed", zap.Error(err))
		return &companyOutcome{Kind: outcomeFailed, Reason: "discovery failed"}
	}

	if !result.CompanyFound {
		return &companyOutcome{Kind: outcomeUnresolved, Reason: "company not found"}
	}
	if result.Verdict.HasTATeam {
		return &companyOutcome{Kind: outcomeSkippedTA, Reason: result.Verdict.Reason}
	}

	query := emails.Query{
		Company:  posting.Company,
		JobTitle: posting.Title,
		Roles:    contactTitles(result.Contacts),
		Domain:   hostFromURL(posting.Website),
	}
	found, err := resilience.ExecuteVal(ctx, o.emailBreaker, func(ctx context.Context) ([]model.EmailResult, error) {
		return o.finder.FindEmails(ctx, query)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		log.Warn("email discovery suspended, finder keeps failing")
		return &companyOutcome{Kind: outcomeQualified, Reason: "email discovery suspended"}
	}
	if err != nil {
		// A failed email lookup is not "no emails": the company stays
		// qualified with zero leads and the error is counted.
		summary.Errors++
		log.Error("email discovery failed", zap.Error(err))
		return &companyOutcome{Kind: outcomeQualified, Reason: "email discovery failed"}
	}

	return &companyOutcome{
		Kind:        outcomeQualified,
		Leads:       buildLeadCandidates(result.Contacts, found),
		EmailsFound: len(found),
	}
}

// hostFromURL extracts a bare host from an employer website URL.
// Schemeless or unparseable values yield "", leaving resolution to the
// email stage.
func hostFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}

func contactTitles(contacts []model.Contact) []string {
	titles := make([]string, 0, len(contacts))
	for _, c := range contacts {
		if c.Title != "" {
			titles = append(titles, c.Title)
		}
	}
	return titles
}

// buildLeadCandidates pairs discovered addresses with scored contacts.
// An address keeps its own name when the finder supplied one, and
// inherits the score of the contact whose name it matches.
func buildLeadCandidates(contacts []model.Contact, found []model.EmailResult) []leadCandidate {
	byName := make(map[string]model.Contact, len(contacts))
	for _, c := range contacts {
		byName[normalizeKey(c.FullName)] = c
	}

	out := make([]leadCandidate, 0, len(found))
	for _, e := range found {
		name := strings.TrimSpace(e.FirstName + " " + e.LastName)
		cand := leadCandidate{
			Name:  name,
			Title: e.Position,
			Email: e.Email,
		}
		if c, ok := byName[normalizeKey(name)]; ok {
			cand.Score = c.Score
			if cand.Title == "" {
				cand.Title = c.Title
			}
		}
		out = append(out, cand)
	}
	return out
}

func (o *Orchestrator) persistLeads(ctx context.Context, runID string, leads []model.Lead, summary *model.RunSummary) {
	if o.saver == nil || len(leads) == 0 {
		return
	}
	if err := o.saver.SaveLeads(ctx, runID, leads); err != nil {
		summary.Errors++
		zap.L().Error("lead persistence failed", zap.String("run_id", runID), zap.Error(err))
	}
}

func (o *Orchestrator) handoff(ctx context.Context, runID string, params model.SearchParams, leads []model.Lead, summary *model.RunSummary) {
	if !o.opts.CampaignHandoff || o.outreach == nil || len(leads) == 0 {
		return
	}
	if o.cancelled(ctx, runID) {
		return
	}

	log := zap.L().With(zap.String("run_id", runID))

	name := fmt.Sprintf("%s %s", params.SearchTerm, time.Now().UTC().Format("2006-01-02"))
	campaignID, err := o.outreach.CreateCampaign(ctx, name)
	if err != nil {
		summary.Errors++
		log.Error("campaign creation failed", zap.Error(err))
		return
	}

	batch := make([]instantly.Lead, 0, len(leads))
	for _, l := range leads {
		first, last := splitName(l.Name)
		batch = append(batch, instantly.Lead{
			Email:       l.Email,
			FirstName:   first,
			LastName:    last,
			CompanyName: l.Company,
			JobTitle:    l.Title,
		})
	}
	if err := o.outreach.AddLeads(ctx, campaignID, batch); err != nil {
		summary.Errors++
		log.Error("campaign lead upload failed", zap.Error(err))
		return
	}

	summary.CampaignID = campaignID
	o.emit(ctx, runID, "handoff", events.LevelInfo, "campaign created", map[string]any{
		"campaign_id": campaignID,
		"leads":       len(batch),
	})
}

func (o *Orchestrator) cancelled(ctx context.Context, runID string) bool {
	return ctx.Err() != nil || o.registry.Cancelled(runID)
}

func (o *Orchestrator) emit(ctx context.Context, runID, stage, level, msg string, payload map[string]any) {
	o.sink.Emit(ctx, events.Event{
		RunID:      runID,
		Stage:      stage,
		Level:      level,
		Message:    msg,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
}

func outcomeName(k outcomeKind) string {
	switch k {
	case outcomeQualified:
		return "qualified"
	case outcomeSkippedTA:
		return "skipped_ta"
	case outcomeUnresolved:
		return "unresolved"
	case outcomeBlacklisted:
		return "blacklisted"
	default:
		return "failed"
	}
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func splitName(full string) (string, string) {
	fields := strings.Fields(full)
	switch len(fields) {
	case 0:
		return "", ""
	case 1:
		return fields[0], ""
	default:
		return fields[0], strings.Join(fields[1:], " ")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
