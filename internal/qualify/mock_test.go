package qualify

import (
	"context"

	"github.com/liac-group/recruit-cli/pkg/linkedin"
)

// mockDirectory implements CompanyDirectory for testing.
type mockDirectory struct {
	profile    *linkedin.Profile
	profileErr error

	pages     map[int][]linkedin.Person
	peopleErr error

	profileCalls int
	peopleCalls  []int
}

func (m *mockDirectory) GetProfile(_ context.Context, company string) (*linkedin.Profile, error) {
	m.profileCalls++
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	if m.profile == nil {
		return &linkedin.Profile{Name: company}, nil
	}
	return m.profile, nil
}

func (m *mockDirectory) GetPeople(_ context.Context, _ string, page int) ([]linkedin.Person, error) {
	m.peopleCalls = append(m.peopleCalls, page)
	if m.peopleErr != nil {
		return nil, m.peopleErr
	}
	return m.pages[page], nil
}

func people(titles ...string) []linkedin.Person {
	out := make([]linkedin.Person, len(titles))
	for i, t := range titles {
		out[i] = linkedin.Person{FullName: "Person " + t, Title: t}
	}
	return out
}
