package qualify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/liac-group/recruit-cli/internal/model"
	"github.com/liac-group/recruit-cli/internal/ratelimit"
	"github.com/liac-group/recruit-cli/pkg/linkedin"
)

// Tier thresholds and caps for TA-team detection.
const (
	// employeeCountSkipThreshold: at or above this head count a company
	// is assumed to run its own recruiting.
	employeeCountSkipThreshold = 20

	// maxPeoplePages / maxTitlesExamined bound tier-2 API spend.
	maxPeoplePages    = 2
	maxTitlesExamined = 20

	// maxReportedRoles caps the matched titles listed in a skip reason.
	maxReportedRoles = 5
)

// CompanyDirectory is the slice of the people-data vendor the detector
// consumes.
type CompanyDirectory interface {
	GetProfile(ctx context.Context, company string) (*linkedin.Profile, error)
	GetPeople(ctx context.Context, company string, page int) ([]linkedin.Person, error)
}

// TAEngine decides whether a company already has an internal
// talent-acquisition function. Tier 1 is free (uses the profile already
// fetched); tier 2 pages through employee titles under the shared rate
// limiter.
type TAEngine struct {
	dir     CompanyDirectory
	limiter *ratelimit.Limiter
}

// NewTAEngine creates a detector using the given directory and limiter.
func NewTAEngine(dir CompanyDirectory, limiter *ratelimit.Limiter) *TAEngine {
	return &TAEngine{dir: dir, limiter: limiter}
}

// CheckTier1 applies the profile-only checks. A skip verdict is terminal;
// a non-skip result means "proceed to tier 2", including the conservative
// case of an unknown (zero) employee count with no lexical clues.
func (e *TAEngine) CheckTier1(profile *linkedin.Profile) (model.TAVerdict, bool) {
	if profile.EmployeeCount >= employeeCountSkipThreshold {
		return model.TAVerdict{
			HasTATeam: true,
			Tier:      model.TierProfile,
			Reason:    fmt.Sprintf("employee count %d", profile.EmployeeCount),
		}, true
	}

	// The indicator check only fires when the vendor reported no head
	// count at all (zero is the vendor's missing-value sentinel). A
	// genuinely tiny company with "University" in its name and a real
	// count keeps its tier-2 shot.
	if profile.EmployeeCount == 0 {
		if ind, ok := matchesLargeOrgIndicator(profile.Name, profile.Industry); ok {
			return model.TAVerdict{
				HasTATeam: true,
				Tier:      model.TierProfile,
				Reason:    fmt.Sprintf("large-company indicators (%s)", ind),
			}, true
		}
	}

	return model.TAVerdict{Tier: model.TierProfile}, false
}

// CheckTier2 pages through up to maxPeoplePages of employee records,
// scanning titles for recruiting/HR keywords. It short-circuits on the
// first match. The examined records are returned so a TARGET company's
// contacts can be scored without refetching.
func (e *TAEngine) CheckTier2(ctx context.Context, companyID string) (model.TAVerdict, []model.EmployeeRecord, error) {
	log := zap.L().With(zap.String("company", companyID))

	var (
		examined []model.EmployeeRecord
		matched  []string
	)

	for page := 1; page <= maxPeoplePages; page++ {
		if err := e.limiter.Admit(ctx); err != nil {
			return model.TAVerdict{}, examined, err
		}

		people, err := e.dir.GetPeople(ctx, companyID, page)
		if err != nil {
			// A failed page reads as "no match on this page"; the
			// scan ends rather than the run.
			log.Warn("people page fetch failed", zap.Int("page", page), zap.Error(err))
			break
		}
		if len(people) == 0 {
			break
		}

		for _, p := range people {
			if len(examined) >= maxTitlesExamined {
				break
			}
			examined = append(examined, model.EmployeeRecord{
				FullName: p.FullName,
				Title:    p.Title,
				Raw:      p.Raw,
			})

			if _, ok := matchesTAKeyword(p.Title); ok {
				matched = appendDistinct(matched, p.Title, maxReportedRoles)
				log.Info("found dedicated TA role", zap.String("title", p.Title))
			}
		}

		// Any match ends the scan after the current page; no further
		// spend on a company that is already a skip.
		if len(matched) > 0 {
			return model.TAVerdict{
				HasTATeam:    true,
				MatchedRoles: matched,
				Tier:         model.TierRoles,
				Reason:       "recruiting roles on staff",
			}, examined, nil
		}

		if len(examined) >= maxTitlesExamined || len(people) < linkedin.PageSize {
			break
		}
	}

	return model.TAVerdict{Tier: model.TierRoles}, examined, nil
}

func appendDistinct(list []string, v string, limit int) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	if len(list) >= limit {
		return list
	}
	return append(list, v)
}
