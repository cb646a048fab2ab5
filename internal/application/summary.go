package application

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/contriblens/contriblens/internal/domain/model"
)

// Summarize derives aggregate metrics from a ranked contribution list. It is
// total: an empty input yields all-zero stats.
func Summarize(contributions []model.Contribution) model.ContributionStats {
	if len(contributions) == 0 {
		return model.ContributionStats{}
	}

	repos := make(map[string]struct{}, len(contributions))
	starValues := make([]float64, 0, len(contributions))
	highImpact := 0

	for _, c := range contributions {
		repos[c.Repo] = struct{}{}
		starValues = append(starValues, float64(c.Stars))
		if c.Impact.IsHigh() {
			highImpact++
		}
	}

	avgStars := 0
	if mean, err := stats.Mean(starValues); err == nil {
		avgStars = int(math.Round(mean))
	}

	total := len(contributions)
	totalRepos := len(repos)

	collaboration := int(math.Round(float64(totalRepos*10 + highImpact*15)))
	if collaboration > 100 {
		collaboration = 100
	}

	return model.ContributionStats{
		TotalRepos:              totalRepos,
		TotalContributions:      total,
		HighImpactContributions: highImpact,
		AvgStars:                avgStars,
		ImpactScore:             int(math.Round(float64(highImpact) / float64(total) * 100)),
		CollaborationScore:      collaboration,
	}
}
