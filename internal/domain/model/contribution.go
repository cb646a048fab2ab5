// Package model contains the pure domain types of the application.
package model

import "time"

// ContributionKind categorizes a contribution by the activity that produced it.
type ContributionKind string

const (
	KindPullRequest ContributionKind = "Pull Request"
	KindIssue       ContributionKind = "Issue"
	KindPush        ContributionKind = "Push"
	KindCreated     ContributionKind = "Created"
	KindOther       ContributionKind = "Other"
)

// ContributionStatus is the outcome of a contribution at classification time.
type ContributionStatus string

const (
	StatusOpen      ContributionStatus = "Open"
	StatusClosed    ContributionStatus = "Closed"
	StatusMerged    ContributionStatus = "Merged"
	StatusPushed    ContributionStatus = "Pushed"
	StatusCompleted ContributionStatus = "Completed"
)

// ImpactTier buckets a contribution's significance. The integer values define
// a total order used for ranking; higher is more significant.
type ImpactTier int

const (
	ImpactLow ImpactTier = iota + 1
	ImpactMedium
	ImpactHigh
	ImpactCritical
)

// String returns the human-readable tier name.
func (t ImpactTier) String() string {
	switch t {
	case ImpactCritical:
		return "Critical"
	case ImpactHigh:
		return "High"
	case ImpactMedium:
		return "Medium"
	default:
		return "Low"
	}
}

// IsHigh reports whether the tier counts toward the high-impact statistics.
func (t ImpactTier) IsHigh() bool {
	return t >= ImpactHigh
}

// Contribution is one normalized unit of a user's activity against a
// repository they do not own. Immutable once built by the classifier.
type Contribution struct {
	Repo         string
	RepoOwner    string
	Kind         ContributionKind
	Title        string
	Impact       ImpactTier
	LinesChanged int
	Stars        int
	Forks        int
	Date         time.Time // Truncated to the day.
	Status       ContributionStatus
	Description  string
}
