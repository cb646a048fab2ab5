// Package application contains use-case orchestration and the contribution
// scoring logic.
package application

import (
	"time"

	"github.com/contriblens/contriblens/internal/domain/model"
)

// recencyWindow is how far back a repository push still counts as recent
// activity for the scoring bonus.
const recencyWindow = 90 * 24 * time.Hour

// Outcome carries the contribution-side signals the impact scorer needs.
type Outcome struct {
	Kind     model.ContributionKind
	MergedAt *time.Time
	ClosedAt *time.Time
}

// ScoreImpact assigns a qualitative impact tier to a contribution from
// repository popularity, the contribution's outcome, and repository recency.
// The additive point scale and the bucket boundaries are load-bearing: the
// ranking and the high-impact statistics depend on them.
func ScoreImpact(repo model.Repository, outcome Outcome, now time.Time) model.ImpactTier {
	points := 0

	switch {
	case repo.Stars > 10000 || repo.Forks > 1000:
		points += 4
	case repo.Stars > 1000 || repo.Forks > 100:
		points += 2
	case repo.Stars > 100:
		points += 1
	}

	switch {
	case outcome.Kind == model.KindPullRequest && outcome.MergedAt != nil:
		points += 3
	case outcome.Kind == model.KindPullRequest:
		points += 1
	case outcome.Kind == model.KindIssue && outcome.ClosedAt != nil:
		points += 2
	}

	if !repo.PushedAt.IsZero() && now.Sub(repo.PushedAt) < recencyWindow {
		points++
	}

	switch {
	case points >= 6:
		return model.ImpactCritical
	case points >= 4:
		return model.ImpactHigh
	case points >= 2:
		return model.ImpactMedium
	default:
		return model.ImpactLow
	}
}
