package qualify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liac-group/recruit-cli/pkg/linkedin"
)

func TestDiscover_TargetCompanyRanksContacts(t *testing.T) {
	dir := &mockDirectory{
		profile: &linkedin.Profile{
			ID:            "acme-1",
			Name:          "Acme Robotics",
			EmployeeCount: 5,
			Found:         true,
		},
		pages: map[int][]linkedin.Person{
			1: people("Senior Backend Engineer", "Founder", "Designer"),
		},
	}

	p := NewPipeline(dir, testLimiter())
	result, err := p.Discover(context.Background(), "Acme Robotics", "", nil)
	require.NoError(t, err)

	assert.True(t, result.CompanyFound)
	assert.False(t, result.Verdict.HasTATeam)
	require.Len(t, result.Contacts, 3)
	assert.Equal(t, "Person Founder", result.Contacts[0].FullName)
	assert.Equal(t, "acme-1", result.Profile.ID)
	assert.Equal(t, []int{1}, dir.peopleCalls)
}

func TestDiscover_EmptyCompanyName(t *testing.T) {
	dir := &mockDirectory{}

	p := NewPipeline(dir, testLimiter())
	result, err := p.Discover(context.Background(), "", "", nil)
	require.NoError(t, err)

	assert.False(t, result.CompanyFound)
	assert.Empty(t, result.Contacts)
	assert.Zero(t, dir.profileCalls)
}

func TestDiscover_ProfileFetchFailureDegradesToNotFound(t *testing.T) {
	dir := &mockDirectory{profileErr: errors.New("upstream 500")}

	p := NewPipeline(dir, testLimiter())
	result, err := p.Discover(context.Background(), "Acme Robotics", "", nil)
	require.NoError(t, err)

	assert.False(t, result.CompanyFound)
	assert.Empty(t, result.Contacts)
	assert.Empty(t, dir.peopleCalls)
}

func TestDiscover_CompanyNotFound(t *testing.T) {
	dir := &mockDirectory{profile: &linkedin.Profile{Name: "Ghost Co"}}

	p := NewPipeline(dir, testLimiter())
	result, err := p.Discover(context.Background(), "Ghost Co", "", nil)
	require.NoError(t, err)

	assert.False(t, result.CompanyFound)
	assert.Nil(t, result.Profile)
	assert.Empty(t, dir.peopleCalls)
}

func TestDiscover_Tier1SkipMakesNoPeopleCalls(t *testing.T) {
	dir := &mockDirectory{
		profile: &linkedin.Profile{
			Name:          "BigCorp",
			EmployeeCount: 250,
			Found:         true,
		},
	}

	p := NewPipeline(dir, testLimiter())
	result, err := p.Discover(context.Background(), "BigCorp", "", nil)
	require.NoError(t, err)

	assert.True(t, result.CompanyFound)
	assert.True(t, result.Verdict.HasTATeam)
	assert.Empty(t, result.Contacts)
	assert.Empty(t, dir.peopleCalls)
}

func TestDiscover_Tier2SkipReturnsNoContacts(t *testing.T) {
	dir := &mockDirectory{
		profile: &linkedin.Profile{
			ID:            "skip-1",
			Name:          "Staffed Co",
			EmployeeCount: 8,
			Found:         true,
		},
		pages: map[int][]linkedin.Person{
			1: people("Engineer", "Technical Recruiter"),
		},
	}

	p := NewPipeline(dir, testLimiter())
	result, err := p.Discover(context.Background(), "Staffed Co", "", nil)
	require.NoError(t, err)

	assert.True(t, result.CompanyFound)
	assert.True(t, result.Verdict.HasTATeam)
	assert.Equal(t, []string{"Technical Recruiter"}, result.Verdict.MatchedRoles)
	assert.Empty(t, result.Contacts)
}

func TestDiscover_FallsBackToNameWhenProfileHasNoID(t *testing.T) {
	dir := &mockDirectory{
		profile: &linkedin.Profile{
			Name:          "Acme Robotics",
			EmployeeCount: 5,
			Found:         true,
		},
		pages: map[int][]linkedin.Person{1: people("Founder")},
	}

	p := NewPipeline(dir, testLimiter())
	_, err := p.Discover(context.Background(), "Acme Robotics", "", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, dir.peopleCalls)
}

func TestDiscover_CapsContacts(t *testing.T) {
	titles := make([]string, 15)
	for i := range titles {
		titles[i] = "Engineer"
	}
	dir := &mockDirectory{
		profile: &linkedin.Profile{ID: "many-1", Name: "Many Co", EmployeeCount: 15, Found: true},
		pages:   map[int][]linkedin.Person{1: people(titles...)},
	}

	p := NewPipeline(dir, testLimiter())
	result, err := p.Discover(context.Background(), "Many Co", "", nil)
	require.NoError(t, err)
	assert.Len(t, result.Contacts, maxContacts)
}

func TestDiscover_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPipeline(&mockDirectory{}, testLimiter())
	_, err := p.Discover(ctx, "Acme Robotics", "", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
