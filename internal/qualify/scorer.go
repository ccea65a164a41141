package qualify

import (
	"sort"
	"strings"

	"github.com/liac-group/recruit-cli/internal/model"
)

// roleHintBonus is added when the title being hired for appears inside a
// candidate's own title; keywordBonus per matched description keyword.
const (
	roleHintBonus = 3.0
	keywordBonus  = 1.0
)

// ScoreTitle computes the additive relevance score for one candidate
// title: seniority lexicon weight per title token, plus bonuses for the
// role hint and description keywords appearing as substrings. Raw sum, no
// normalization.
func ScoreTitle(title, roleHint string, keywords []string) float64 {
	var score float64

	for _, tok := range tokenize(title) {
		score += seniorityWeights[tok]
	}

	lowered := strings.ToLower(title)
	if roleHint != "" && strings.Contains(lowered, strings.ToLower(roleHint)) {
		score += roleHintBonus
	}
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(kw)) {
			score += keywordBonus
		}
	}

	return score
}

// RankContacts scores the examined employee records and returns them as
// Contacts ordered by score descending, ties keeping input order.
func RankContacts(records []model.EmployeeRecord, company, roleHint string, keywords []string) []model.Contact {
	contacts := make([]model.Contact, 0, len(records))
	for _, r := range records {
		contacts = append(contacts, model.Contact{
			FullName: r.FullName,
			Title:    r.Title,
			Company:  company,
			Score:    ScoreTitle(r.Title, roleHint, keywords),
		})
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].Score > contacts[j].Score
	})
	return contacts
}
