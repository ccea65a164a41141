package qualify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liac-group/recruit-cli/internal/model"
	"github.com/liac-group/recruit-cli/internal/ratelimit"
	"github.com/liac-group/recruit-cli/pkg/linkedin"
)

func testLimiter() *ratelimit.Limiter {
	return ratelimit.New(1000, time.Minute)
}

func TestCheckTier1_EmployeeCountSkip(t *testing.T) {
	e := NewTAEngine(&mockDirectory{}, testLimiter())

	verdict, skip := e.CheckTier1(&linkedin.Profile{Name: "BigCo", EmployeeCount: 25, Found: true})
	require.True(t, skip)
	assert.True(t, verdict.HasTATeam)
	assert.Equal(t, model.TierProfile, verdict.Tier)
	assert.Contains(t, verdict.Reason, "employee count")
}

func TestCheckTier1_LargeOrgIndicatorOnlyWhenCountUnknown(t *testing.T) {
	e := NewTAEngine(&mockDirectory{}, testLimiter())

	// Unknown (zero) count + lexical clue: skip.
	verdict, skip := e.CheckTier1(&linkedin.Profile{Name: "Acme University", EmployeeCount: 0, Found: true})
	require.True(t, skip)
	assert.Contains(t, verdict.Reason, "large-company indicators")

	// A reported small count suppresses the indicator check.
	_, skip = e.CheckTier1(&linkedin.Profile{Name: "Acme University Tutoring", EmployeeCount: 3, Found: true})
	assert.False(t, skip)
}

func TestCheckTier1_SmallCompanyProceeds(t *testing.T) {
	e := NewTAEngine(&mockDirectory{}, testLimiter())

	_, skip := e.CheckTier1(&linkedin.Profile{Name: "Acme Robotics", EmployeeCount: 5, Found: true})
	assert.False(t, skip)

	// Unknown count with no indicators proceeds conservatively.
	_, skip = e.CheckTier1(&linkedin.Profile{Name: "Quiet Startup", EmployeeCount: 0, Found: true})
	assert.False(t, skip)
}

func TestDiscover_EnterpriseNameSkipsBeforeProfileFetch(t *testing.T) {
	dir := &mockDirectory{}
	p := NewPipeline(dir, testLimiter())

	result, err := p.Discover(context.Background(), "Google", "", nil)
	require.NoError(t, err)
	assert.True(t, result.CompanyFound)
	assert.True(t, result.Verdict.HasTATeam)
	assert.Contains(t, result.Verdict.Reason, "enterprise company")
	// No paid lookups for a household name.
	assert.Zero(t, dir.profileCalls)
	assert.Empty(t, dir.peopleCalls)
}

func TestCheckTier2_ShortCircuitsAfterMatchingPage(t *testing.T) {
	dir := &mockDirectory{pages: map[int][]linkedin.Person{
		1: people("Recruiter", "Engineer", "Designer"),
		2: people("Founder"),
	}}
	e := NewTAEngine(dir, testLimiter())

	verdict, _, err := e.CheckTier2(context.Background(), "acme")
	require.NoError(t, err)
	assert.True(t, verdict.HasTATeam)
	assert.Equal(t, model.TierRoles, verdict.Tier)
	assert.Equal(t, []string{"Recruiter"}, verdict.MatchedRoles)
	// Only the first page was fetched.
	assert.Equal(t, []int{1}, dir.peopleCalls)
}

func TestCheckTier2_NoMatchIsTarget(t *testing.T) {
	dir := &mockDirectory{pages: map[int][]linkedin.Person{
		1: people("Founder", "Senior Backend Engineer", "Designer"),
	}}
	e := NewTAEngine(dir, testLimiter())

	verdict, examined, err := e.CheckTier2(context.Background(), "acme")
	require.NoError(t, err)
	assert.False(t, verdict.HasTATeam)
	assert.Len(t, examined, 3)
}

func TestCheckTier2_CapsExaminedTitles(t *testing.T) {
	var page1, page2 []string
	for i := 0; i < 10; i++ {
		page1 = append(page1, "Engineer")
		page2 = append(page2, "Analyst")
	}
	dir := &mockDirectory{pages: map[int][]linkedin.Person{
		1: people(page1...),
		2: people(page2...),
		3: people("Recruiter"),
	}}
	e := NewTAEngine(dir, testLimiter())

	verdict, examined, err := e.CheckTier2(context.Background(), "acme")
	require.NoError(t, err)
	assert.False(t, verdict.HasTATeam)
	assert.Len(t, examined, maxTitlesExamined)
	// The third page is never requested.
	assert.Equal(t, []int{1, 2}, dir.peopleCalls)
}

func TestCheckTier2_CollectsDistinctRoles(t *testing.T) {
	dir := &mockDirectory{pages: map[int][]linkedin.Person{
		1: people("Recruiter", "Recruiter", "Talent Acquisition Manager", "HR Generalist"),
	}}
	e := NewTAEngine(dir, testLimiter())

	verdict, _, err := e.CheckTier2(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"Recruiter", "Talent Acquisition Manager", "HR Generalist"}, verdict.MatchedRoles)
}

func TestCheckTier2_FetchErrorEndsScan(t *testing.T) {
	dir := &mockDirectory{peopleErr: assert.AnError}
	e := NewTAEngine(dir, testLimiter())

	verdict, examined, err := e.CheckTier2(context.Background(), "acme")
	require.NoError(t, err)
	assert.False(t, verdict.HasTATeam)
	assert.Empty(t, examined)
}

func TestMatchesTAKeyword_TokenBoundaries(t *testing.T) {
	tests := []struct {
		title   string
		matched bool
	}{
		{"Chrome Extension Developer", false},
		{"Thread Safety Engineer", false},
		{"Philharmonic Director", false},
		{"HR Manager", true},
		{"Director of Human Resources", true},
		{"Corporate Recruiters", true},
		{"Talent Acquisition Lead", true},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			_, ok := matchesTAKeyword(tt.title)
			assert.Equal(t, tt.matched, ok)
		})
	}
}

func TestMatchesLargeOrgIndicator_TokenBoundaries(t *testing.T) {
	// "inc" must match the token, not a fragment of another word.
	_, ok := matchesLargeOrgIndicator("Incredible Machines", "")
	assert.False(t, ok)

	_, ok = matchesLargeOrgIndicator("Acme Widgets Inc.", "")
	assert.True(t, ok)

	_, ok = matchesLargeOrgIndicator("Mercy General", "health system operator")
	assert.True(t, ok)
}
