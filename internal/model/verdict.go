package model

// Detection tiers for the TA-team check. Tier 1 uses only the profile
// already fetched; tier 2 pages through employee titles.
const (
	TierProfile = 1
	TierRoles   = 2
)

// TAVerdict is the outcome of TA-team detection for one company within
// one pipeline pass. Terminal once computed; never revisited for the same
// company in the same run.
type TAVerdict struct {
	HasTATeam    bool     `json:"has_ta_team"`
	MatchedRoles []string `json:"matched_roles,omitempty"`
	Tier         int      `json:"tier"`
	Reason       string   `json:"reason,omitempty"`
}
