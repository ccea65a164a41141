// Package qualify decides whether a hiring company is a recruiting
// target and who the best contacts there are.
package qualify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/liac-group/recruit-cli/internal/model"
	"github.com/liac-group/recruit-cli/internal/ratelimit"
)

// maxContacts is how many ranked contacts a TARGET company yields.
const maxContacts = 10

// Result is the outcome of one company qualification.
type Result struct {
	// Contacts is the ranked candidate list; empty unless the company
	// is a TARGET.
	Contacts []model.Contact

	Verdict model.TAVerdict

	// CompanyFound distinguishes "vendor has no record of this company"
	// from a TA-team skip. An unfound company is a skip without
	// penalty, never blacklist-worthy.
	CompanyFound bool

	// Profile is set when CompanyFound is true.
	Profile *model.CompanyProfile
}

// Pipeline orchestrates profile lookup, TA detection, and contact
// scoring for one company. Every external call it makes passes through
// the shared rate limiter.
type Pipeline struct {
	dir     CompanyDirectory
	engine  *TAEngine
	limiter *ratelimit.Limiter
}

// NewPipeline wires a discovery pipeline over the people-data vendor.
func NewPipeline(dir CompanyDirectory, limiter *ratelimit.Limiter) *Pipeline {
	return &Pipeline{
		dir:     dir,
		engine:  NewTAEngine(dir, limiter),
		limiter: limiter,
	}
}

// Discover qualifies a company and, when it is a TARGET, returns its
// top-ranked contacts. Transport failures degrade to "company not found"
// rather than propagating; context cancellation is the only error
// returned.
func (p *Pipeline) Discover(ctx context.Context, company, roleHint string, keywords []string) (*Result, error) {
	log := zap.L().With(zap.String("company", company))

	if company == "" {
		return &Result{}, nil
	}

	// Household names are skipped before the profile fetch; no paid
	// lookup for a company guaranteed to run its own recruiting.
	if ent, ok := matchesEnterpriseName(company); ok {
		log.Info("enterprise company, skipping", zap.String("matched", ent))
		return &Result{
			CompanyFound: true,
			Verdict: model.TAVerdict{
				HasTATeam: true,
				Tier:      model.TierProfile,
				Reason:    fmt.Sprintf("enterprise company (%s)", ent),
			},
			Profile: &model.CompanyProfile{Name: company, Found: true},
		}, nil
	}

	if err := p.limiter.Admit(ctx); err != nil {
		return nil, err
	}

	profile, err := p.dir.GetProfile(ctx, company)
	if err != nil {
		log.Warn("company profile fetch failed", zap.Error(err))
		return &Result{}, nil
	}
	if !profile.Found {
		log.Info("company not found in directory")
		return &Result{}, nil
	}

	result := &Result{
		CompanyFound: true,
		Profile: &model.CompanyProfile{
			Name:          profile.Name,
			ID:            profile.ID,
			Verified:      profile.Verified,
			EmployeeCount: profile.EmployeeCount,
			Industry:      profile.Industry,
			Found:         true,
		},
	}

	if verdict, skip := p.engine.CheckTier1(profile); skip {
		log.Info("tier 1 skip", zap.String("reason", verdict.Reason))
		result.Verdict = verdict
		return result, nil
	}

	companyID := profile.ID
	if companyID == "" {
		companyID = company
	}

	verdict, examined, err := p.engine.CheckTier2(ctx, companyID)
	if err != nil {
		return nil, err
	}
	result.Verdict = verdict
	if verdict.HasTATeam {
		// No contact scoring for a skipped company.
		log.Info("tier 2 skip", zap.Strings("roles", verdict.MatchedRoles))
		return result, nil
	}

	contacts := RankContacts(examined, company, roleHint, keywords)
	if len(contacts) > maxContacts {
		contacts = contacts[:maxContacts]
	}
	result.Contacts = contacts

	log.Info("company qualified",
		zap.Int("examined", len(examined)),
		zap.Int("contacts", len(contacts)))
	return result, nil
}
