// Package emails finds verified contact addresses for qualified
// companies.
package emails

import (
	"context"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/liac-group/recruit-cli/internal/model"
	"github.com/liac-group/recruit-cli/internal/ratelimit"
	"github.com/liac-group/recruit-cli/pkg/hunter"
)

// minEmailConfidence: addresses at or below this are discarded.
const minEmailConfidence = 50

// searchSeniority narrows domain search to decision makers.
const searchSeniority = "senior,executive"

// defaultSearchLimit caps addresses requested per domain.
const defaultSearchLimit = 10

// genericPrefixes are role-account local parts never worth outreach.
var genericPrefixes = map[string]struct{}{
	"info": {}, "contact": {}, "hello": {}, "support": {}, "sales": {},
	"admin": {}, "office": {}, "mail": {}, "team": {}, "hr": {},
	"jobs": {}, "careers": {}, "press": {}, "legal": {}, "billing": {},
	"noreply": {}, "no-reply": {}, "help": {},
}

// DomainResolver maps a company name to its web domain.
type DomainResolver interface {
	Resolve(ctx context.Context, company string) (string, bool)
}

// Query scopes one email search.
type Query struct {
	Company string

	// JobTitle is the posting that triggered the search, carried for
	// log context only.
	JobTitle string

	// Roles are contact titles already known at the company. Addresses
	// whose position matches a role are ordered first.
	Roles []string

	// Domain skips resolution when the caller already knows it.
	Domain string
}

// Stage discovers verified emails for one company at a time. A lookup
// failure is an error distinct from a clean empty result, so the caller
// can retry a flaky vendor without re-treating "no emails exist" as one.
type Stage struct {
	resolver DomainResolver
	hunter   hunter.Client
	limiter  *ratelimit.Limiter
	limit    int
}

// NewStage wires an email discovery stage.
func NewStage(resolver DomainResolver, client hunter.Client, limiter *ratelimit.Limiter) *Stage {
	return &Stage{
		resolver: resolver,
		hunter:   client,
		limiter:  limiter,
		limit:    defaultSearchLimit,
	}
}

// WithLimit overrides how many addresses are requested per domain.
func (s *Stage) WithLimit(n int) *Stage {
	if n > 0 {
		s.limit = n
	}
	return s
}

// FindEmails resolves the company's domain (guessing from its name when
// resolution fails) and returns the senior-level addresses above the
// confidence floor, generic role accounts removed.
func (s *Stage) FindEmails(ctx context.Context, q Query) ([]model.EmailResult, error) {
	log := zap.L().With(
		zap.String("company", q.Company),
		zap.String("job_title", q.JobTitle))

	dom := q.Domain
	if dom == "" {
		var ok bool
		dom, ok = s.resolver.Resolve(ctx, q.Company)
		if !ok {
			dom = GuessDomain(q.Company)
			if dom == "" {
				log.Info("no usable domain for email search")
				return nil, nil
			}
			log.Info("falling back to guessed domain", zap.String("domain", dom))
		}
	}

	if err := s.limiter.Admit(ctx); err != nil {
		return nil, err
	}

	found, err := s.hunter.DomainSearch(ctx, hunter.DomainSearchRequest{
		Domain:    dom,
		Seniority: searchSeniority,
		Limit:     s.limit,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "emails: domain search %q", dom)
	}

	results := make([]model.EmailResult, 0, len(found))
	for _, e := range found {
		if e.Confidence <= minEmailConfidence {
			continue
		}
		if isGenericAddress(e.Value) {
			continue
		}
		results = append(results, model.EmailResult{
			Email:       e.Value,
			Confidence:  e.Confidence,
			Position:    e.Position,
			FirstName:   e.FirstName,
			LastName:    e.LastName,
			LinkedInURL: e.LinkedIn,
		})
	}

	if len(q.Roles) > 0 {
		results = preferRoles(results, q.Roles)
	}

	log.Info("email search finished",
		zap.String("domain", dom),
		zap.Int("raw", len(found)),
		zap.Int("kept", len(results)))
	return results, nil
}

// preferRoles orders addresses whose position matches a known contact
// role ahead of the rest, keeping the vendor's order within each group.
func preferRoles(in []model.EmailResult, roles []string) []model.EmailResult {
	matched := make([]model.EmailResult, 0, len(in))
	rest := make([]model.EmailResult, 0, len(in))
	for _, e := range in {
		if roleMatch(e.Position, roles) {
			matched = append(matched, e)
		} else {
			rest = append(rest, e)
		}
	}
	return append(matched, rest...)
}

// roleMatch checks whether any meaningful token of a role title appears
// in the address's position.
func roleMatch(position string, roles []string) bool {
	p := strings.ToLower(position)
	if p == "" {
		return false
	}
	for _, role := range roles {
		for _, tok := range strings.Fields(strings.ToLower(role)) {
			if len(tok) > 3 && strings.Contains(p, tok) {
				return true
			}
		}
	}
	return false
}

// GuessDomain derives a plausible .com domain from a company name:
// diacritics folded, legal suffixes dropped, non-alphanumerics removed.
func GuessDomain(company string) string {
	folded, _, err := transform.String(transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	), company)
	if err != nil {
		folded = company
	}

	var b strings.Builder
	for _, tok := range strings.Fields(strings.ToLower(folded)) {
		tok = strings.Trim(tok, ".,&")
		switch tok {
		case "inc", "llc", "ltd", "gmbh", "corp", "co", "sas", "srl", "plc", "the":
			continue
		}
		for _, r := range tok {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
	}

	if b.Len() == 0 {
		return ""
	}
	return b.String() + ".com"
}

func isGenericAddress(addr string) bool {
	local, _, ok := strings.Cut(addr, "@")
	if !ok || local == "" {
		return true
	}
	_, generic := genericPrefixes[strings.ToLower(local)]
	return generic
}
