package model

// ContributionStats are the aggregate metrics derived from a ranked
// contribution list.
type ContributionStats struct {
	TotalRepos              int
	TotalContributions      int
	HighImpactContributions int
	AvgStars                int
	ImpactScore             int // 0-100, share of high-impact contributions.
	CollaborationScore      int // 0-100 composite of breadth and impact.
}

// Report is the full result of one analysis query. A non-nil Report with zero
// contributions means the query succeeded but found nothing qualifying, which
// callers must distinguish from "never queried".
type Report struct {
	User          User
	Contributions []Contribution
	Stats         ContributionStats
}

// Empty reports whether the analysis found no qualifying contributions.
func (r *Report) Empty() bool {
	return len(r.Contributions) == 0
}
