package qualify

import "strings"

// Keyword tables shared by the TA detector and the contact scorer. These
// are defined once here; call sites must not carry their own copies.

// taKeywords mark a title as belonging to an internal recruiting/HR
// function. Multi-word entries match case-insensitively as substrings;
// single-word entries match whole tokens (so "hr" does not hit
// "Chrome").
var taKeywords = []string{
	"talent acquisition",
	"talent partner",
	"talent",
	"recruiter",
	"recruiting",
	"recruitment",
	"human resources",
	"hr",
	"people ops",
	"people operations",
	"people partner",
	"staffing",
	"hiring",
}

// largeOrgIndicators are lexical clues in a company name or industry text
// that the organization is large enough to run its own recruiting.
// Single-word entries match whole tokens (so "inc" does not hit
// "incredible"); multi-word entries match as substrings.
var largeOrgIndicators = []string{
	"inc",
	"incorporated",
	"corp",
	"corporation",
	"university",
	"college",
	"hospital",
	"health system",
	"bank",
	"government",
	"federal",
	"school district",
	"institute",
	"holdings",
	"global",
	"international",
}

// enterpriseCompanies are household names guaranteed to have internal TA.
// The discovery pipeline checks them before the profile fetch, so no
// profile spend is wasted on them.
var enterpriseCompanies = []string{
	"google", "microsoft", "amazon", "apple", "meta", "facebook",
	"netflix", "tesla", "lockheed martin", "general dynamics", "boeing",
	"ibm", "oracle", "salesforce", "adobe", "intel", "nvidia", "uber",
	"airbnb", "linkedin", "paypal", "jpmorgan", "goldman sachs",
	"morgan stanley",
}

// seniorityWeights is the additive per-token lexicon used for contact
// ranking. Raw sums, no normalization; scores only compare within one
// company's candidate set.
var seniorityWeights = map[string]float64{
	"founder":    5,
	"cofounder":  5,
	"co-founder": 5,
	"ceo":        5,
	"cto":        5,
	"coo":        5,
	"chief":      5,
	"president":  4,
	"vp":         4,
	"head":       3,
	"senior":     3,
	"sr":         3,
	"lead":       2,
	"principal":  2,
	"director":   2,
	"manager":    1,
}

// matchesTAKeyword reports whether a title denotes a recruiting/HR role,
// returning the first matching keyword.
func matchesTAKeyword(title string) (string, bool) {
	t := strings.ToLower(title)
	tokens := tokenize(t)
	for _, kw := range taKeywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(t, kw) {
				return kw, true
			}
			continue
		}
		for _, tok := range tokens {
			if tokenMatches(tok, kw) {
				return kw, true
			}
		}
	}
	return "", false
}

// tokenMatches compares one title token against a single-word keyword.
// Longer keywords also match as token prefixes, so "recruiter" covers
// "recruiters"; two-letter ones like "hr" match exactly.
func tokenMatches(tok, kw string) bool {
	if tok == kw {
		return true
	}
	return len(kw) > 3 && strings.HasPrefix(tok, kw)
}

// matchesLargeOrgIndicator scans company name and industry text for
// large-organization clues.
func matchesLargeOrgIndicator(name, industry string) (string, bool) {
	text := strings.ToLower(name + " " + industry)
	tokens := tokenize(text)

	for _, ind := range largeOrgIndicators {
		if strings.Contains(ind, " ") {
			if strings.Contains(text, ind) {
				return ind, true
			}
			continue
		}
		for _, tok := range tokens {
			if tok == ind {
				return ind, true
			}
		}
	}
	return "", false
}

// matchesEnterpriseName reports whether a company name belongs to a
// known enterprise.
func matchesEnterpriseName(name string) (string, bool) {
	lowered := strings.ToLower(name)
	for _, ent := range enterpriseCompanies {
		if strings.Contains(lowered, ent) {
			return ent, true
		}
	}
	return "", false
}

// tokenize splits on whitespace and trims surrounding punctuation from
// each token.
func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:()[]{}&/")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
