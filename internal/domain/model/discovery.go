package model

import "time"

// Difficulty is the estimated contribution difficulty of a repository.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// RepoRecommendation is a discovery result: a repository enriched with
// derived contributor-facing metrics.
type RepoRecommendation struct {
	FullName            string
	DisplayName         string
	Description         string
	Language            string
	Stars               int
	Forks               int
	OpenIssues          int
	License             string
	URL                 string
	Owner               string
	LastPushed          time.Time
	Difficulty          Difficulty
	ContributorFriendly int    // 0-10.
	MaintainerActivity  string // "Very Active", "Active", "Moderate", "Unknown".
	Tags                []string

	// GoodFirstIssues is a live count from the search index. When the count
	// query failed, GoodFirstIssuesKnown is false and the count is zero; the
	// value is never fabricated.
	GoodFirstIssues      int
	GoodFirstIssuesKnown bool
}

// DiscoveryResult is one page of repository recommendations.
type DiscoveryResult struct {
	TotalFound      int
	Recommendations []RepoRecommendation
}
