package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contriblens/contriblens/internal/domain/model"
	"github.com/contriblens/contriblens/internal/domain/port/driven"
)

// enrichLimit caps how many search hits per page get per-repository metric
// enrichment, bounding the extra API calls.
const enrichLimit = 10

// DiscoveryFilter is the user-facing filter set for repository discovery.
type DiscoveryFilter struct {
	Language   string
	Difficulty string // "", "all", "beginner", "intermediate", "advanced".
	Type       string // "", "all", "web", "mobile", "ai-ml", "tools", "documentation".
	Sort       string // "stars", "updated", "help-wanted-issues", "created".
	MinStars   int
	Page       int
}

// typeTopics maps a project-type filter to its search topic qualifier.
var typeTopics = map[string]string{
	"documentation": "topic:documentation",
	"web":           "topic:web",
	"mobile":        "topic:mobile",
	"ai-ml":         "topic:machine-learning",
	"tools":         "topic:tools",
}

// DiscoveryService recommends repositories to contribute to, enriching
// search hits with contributor-facing metrics.
type DiscoveryService struct {
	gh     driven.GitHubClient
	logger *slog.Logger
	now    func() time.Time
}

// NewDiscoveryService creates a DiscoveryService.
func NewDiscoveryService(gh driven.GitHubClient, logger *slog.Logger) *DiscoveryService {
	return &DiscoveryService{
		gh:     gh,
		logger: logger,
		now:    time.Now,
	}
}

// Discover runs a filtered repository search and enriches the leading hits.
// Good-first-issue counts come from a live per-repository query; when that
// query fails the count is reported as unknown, never invented.
func (s *DiscoveryService) Discover(ctx context.Context, filter DiscoveryFilter) (*model.DiscoveryResult, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}

	query := s.buildQuery(filter)
	total, repos, err := s.gh.SearchRepositories(ctx, query, sortField(filter.Sort), page)
	if err != nil {
		return nil, fmt.Errorf("searching repositories: %w", err)
	}

	if len(repos) > enrichLimit {
		repos = repos[:enrichLimit]
	}

	counts := make([]int, len(repos))
	known := make([]bool, len(repos))

	var g errgroup.Group
	g.SetLimit(hydrationConcurrency)
	for i, repo := range repos {
		g.Go(func() error {
			n, err := s.gh.CountGoodFirstIssues(ctx, repo.FullName)
			if err != nil {
				s.logger.Warn("good-first-issue count failed", "repo", repo.FullName, "error", err)
				return nil
			}
			counts[i], known[i] = n, true
			return nil
		})
	}
	_ = g.Wait()

	now := s.now()
	recommendations := make([]model.RepoRecommendation, 0, len(repos))
	for i, repo := range repos {
		recommendations = append(recommendations, recommend(repo, counts[i], known[i], now))
	}

	return &model.DiscoveryResult{
		TotalFound:      total,
		Recommendations: recommendations,
	}, nil
}

// buildQuery assembles the search qualifier string from the filter set,
// always restricting to public, unarchived repositories pushed within the
// last year.
func (s *DiscoveryService) buildQuery(filter DiscoveryFilter) string {
	var parts []string

	if lang := strings.TrimSpace(filter.Language); lang != "" {
		parts = append(parts, "language:"+strings.ToLower(lang))
	}

	switch filter.Difficulty {
	case string(model.DifficultyBeginner):
		parts = append(parts, "topic:good-first-issue")
	case string(model.DifficultyIntermediate):
		parts = append(parts, "topic:help-wanted")
	}

	minStars := filter.MinStars
	if minStars < 0 {
		minStars = 0
	}
	parts = append(parts, fmt.Sprintf("stars:>=%d", minStars))

	if topic, ok := typeTopics[filter.Type]; ok {
		parts = append(parts, topic)
	}

	oneYearAgo := s.now().AddDate(-1, 0, 0)
	parts = append(parts,
		"pushed:>"+oneYearAgo.UTC().Format("2006-01-02"),
		"is:public",
		"archived:false",
	)

	return strings.Join(parts, " ")
}

// recommend derives the contributor-facing metrics for one repository.
func recommend(repo model.Repository, goodFirstIssues int, countKnown bool, now time.Time) model.RepoRecommendation {
	isPopular := repo.Stars > 10000
	hasGoodDocs := repo.HasWiki || len(repo.Description) > 50
	recentlyActive := !repo.PushedAt.IsZero() && now.Sub(repo.PushedAt) < 30*24*time.Hour

	difficulty := model.DifficultyIntermediate
	if goodFirstIssues >= 5 && hasGoodDocs && !isPopular {
		difficulty = model.DifficultyBeginner
	} else if isPopular && goodFirstIssues < 3 {
		difficulty = model.DifficultyAdvanced
	}

	friendly := 5
	if goodFirstIssues >= 10 {
		friendly += 2
	}
	if strings.Contains(strings.ToLower(repo.Description), "contribut") {
		friendly++
	}
	if recentlyActive {
		friendly++
	}
	if repo.OpenIssues > 0 && repo.OpenIssues < 100 {
		friendly++
	}
	if friendly > 10 {
		friendly = 10
	}

	activity := "Unknown"
	if recentlyActive {
		daysSincePush := int(now.Sub(repo.PushedAt).Hours() / 24)
		switch {
		case daysSincePush < 7:
			activity = "Very Active"
		case daysSincePush < 30:
			activity = "Active"
		default:
			activity = "Moderate"
		}
	}

	tags := make([]string, 0, 4)
	for _, topic := range repo.Topics {
		if len(tags) == 3 {
			break
		}
		tags = append(tags, topic)
	}
	if difficulty == model.DifficultyBeginner {
		tags = append(tags, "beginner-friendly")
	}
	if goodFirstIssues > 10 {
		tags = append(tags, "good-first-issues")
	}
	if recentlyActive {
		tags = append(tags, "active")
	}
	if len(tags) > 4 {
		tags = tags[:4]
	}

	description := repo.Description
	if description == "" {
		description = "No description available"
	}
	language := repo.Language
	if language == "" {
		language = "Multiple"
	}
	license := repo.License
	if license == "" {
		license = "No license"
	}

	return model.RepoRecommendation{
		FullName:             repo.FullName,
		DisplayName:          repo.Name,
		Description:          description,
		Language:             language,
		Stars:                repo.Stars,
		Forks:                repo.Forks,
		OpenIssues:           repo.OpenIssues,
		License:              license,
		URL:                  repo.HTMLURL,
		Owner:                repo.Owner,
		LastPushed:           repo.PushedAt,
		Difficulty:           difficulty,
		ContributorFriendly:  friendly,
		MaintainerActivity:   activity,
		Tags:                 tags,
		GoodFirstIssues:      goodFirstIssues,
		GoodFirstIssuesKnown: countKnown,
	}
}

// sortField validates the requested sort, defaulting to stars.
func sortField(sort string) string {
	switch sort {
	case "updated", "help-wanted-issues", "created":
		return sort
	default:
		return "stars"
	}
}
