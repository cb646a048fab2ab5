package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/contriblens/contriblens/internal/domain/model"
	"github.com/contriblens/contriblens/internal/domain/port/driven"
)

const (
	// eventPageCount is how many 100-record pages of the public event feed
	// are fetched per analysis.
	eventPageCount = 3

	// maxHydratedRepos bounds the per-repository hydration fan-out.
	maxHydratedRepos = 25

	// maxContributions is the size of the final ranked list.
	maxContributions = 50

	// hydrationConcurrency bounds parallel repository metadata fetches.
	hydrationConcurrency = 8
)

// AnalysisService orchestrates the contribution aggregation pipeline: fetch,
// ownership filtering, hydration, classification, deduplication, ranking, and
// summary statistics. Each Analyze call owns its own accumulators, so a
// superseded query cannot corrupt the next one's state.
type AnalysisService struct {
	gh     driven.GitHubClient
	logger *slog.Logger
	now    func() time.Time
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(gh driven.GitHubClient, logger *slog.Logger) *AnalysisService {
	return &AnalysisService{
		gh:     gh,
		logger: logger,
		now:    time.Now,
	}
}

// Analyze builds the ranked external-contribution report for a GitHub user.
//
// Failure semantics: a missing user or the failure of every source is
// terminal; an individual source or hydration failure only removes its
// records from the result.
func (s *AnalysisService) Analyze(ctx context.Context, username string) (*model.Report, error) {
	start := time.Now()

	user, err := s.gh.GetUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolving user %s: %w", username, err)
	}

	events, items, err := s.fetchSources(ctx, username)
	if err != nil {
		return nil, err
	}

	// External-contribution boundary: drop records owned by the queried
	// user, comparing owners case-insensitively.
	events = filterExternalEvents(events, username)
	items = filterExternalItems(items, username)

	repoMap := s.hydrateRepos(ctx, repoNamesOf(events, items))

	now := s.now()
	contributions := make([]model.Contribution, 0, len(events)+len(items))

	for _, e := range events {
		repo, ok := repoMap[e.RepoFullName]
		if !ok {
			continue
		}
		c := ClassifyEvent(repo, e, now)
		// Owner exclusion again at the contribution level: hydrated owner
		// casing can differ from the raw event's.
		if strings.EqualFold(c.RepoOwner, username) {
			continue
		}
		contributions = append(contributions, c)
	}

	for _, it := range items {
		repo, ok := repoMap[it.RepoFullName]
		if !ok {
			continue
		}
		c := ClassifySearchItem(repo, it, now)
		if strings.EqualFold(c.RepoOwner, username) {
			continue
		}
		contributions = append(contributions, c)
	}

	contributions = dedupeContributions(contributions)
	rankContributions(contributions)
	if len(contributions) > maxContributions {
		contributions = contributions[:maxContributions]
	}

	s.logger.Info("analysis complete",
		"username", username,
		"contributions", len(contributions),
		"repos_hydrated", len(repoMap),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &model.Report{
		User:          *user,
		Contributions: contributions,
		Stats:         Summarize(contributions),
	}, nil
}

// fetchSources fetches the event pages and the two search queries
// concurrently. Every branch records its own outcome; a failed branch never
// cancels its siblings. Only the failure of all sources is terminal, with a
// rate-limit error preferred so the caller sees the reset time.
func (s *AnalysisService) fetchSources(ctx context.Context, username string) ([]model.Event, []model.SearchItem, error) {
	var (
		eventPages [eventPageCount][]model.Event
		eventErrs  [eventPageCount]error

		prItems, issueItems []model.SearchItem
		prErr, issueErr     error
	)

	var g errgroup.Group
	for i := range eventPageCount {
		g.Go(func() error {
			eventPages[i], eventErrs[i] = s.gh.ListUserEvents(ctx, username, i+1)
			return nil
		})
	}
	g.Go(func() error {
		prItems, prErr = s.gh.SearchPullRequests(ctx, username)
		return nil
	})
	g.Go(func() error {
		issueItems, issueErr = s.gh.SearchIssues(ctx, username)
		return nil
	})
	_ = g.Wait()

	sourceErrs := append(eventErrs[:], prErr, issueErr)
	var failures []error
	for i, err := range sourceErrs {
		if err != nil {
			failures = append(failures, err)
			s.logger.Warn("contribution source failed",
				"username", username,
				"source", sourceName(i),
				"error", err,
			)
		}
	}

	if len(failures) == len(sourceErrs) {
		for _, err := range failures {
			if model.IsRateLimit(err) {
				return nil, nil, fmt.Errorf("fetching contributions for %s: %w", username, err)
			}
		}
		return nil, nil, fmt.Errorf("all contribution sources failed for %s: %w", username, failures[0])
	}

	var events []model.Event
	for _, page := range eventPages {
		events = append(events, page...)
	}

	return events, append(prItems, issueItems...), nil
}

// hydrateRepos fetches repository metadata concurrently, keyed by the name
// the raw records referenced. A repository that fails to hydrate is simply
// absent from the map, dropping the records that point at it.
func (s *AnalysisService) hydrateRepos(ctx context.Context, names []string) map[string]model.Repository {
	repos := make([]*model.Repository, len(names))

	var g errgroup.Group
	g.SetLimit(hydrationConcurrency)
	for i, name := range names {
		g.Go(func() error {
			repo, err := s.gh.GetRepository(ctx, name)
			if err != nil {
				s.logger.Warn("repository hydration failed", "repo", name, "error", err)
				return nil
			}
			repos[i] = repo
			return nil
		})
	}
	_ = g.Wait()

	repoMap := make(map[string]model.Repository, len(names))
	for i, repo := range repos {
		if repo != nil {
			repoMap[names[i]] = *repo
		}
	}
	return repoMap
}

// repoNamesOf collects the distinct repository names referenced by the
// surviving records, in first-seen order, capped to bound the hydration
// fan-out.
func repoNamesOf(events []model.Event, items []model.SearchItem) []string {
	seen := make(map[string]struct{})
	var names []string

	add := func(name string) {
		if name == "" || len(names) >= maxHydratedRepos {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, e := range events {
		add(e.RepoFullName)
	}
	for _, it := range items {
		add(it.RepoFullName)
	}

	return names
}

func filterExternalEvents(events []model.Event, username string) []model.Event {
	kept := events[:0]
	for _, e := range events {
		owner := model.OwnerOf(e.RepoFullName)
		if owner != "" && !strings.EqualFold(owner, username) {
			kept = append(kept, e)
		}
	}
	return kept
}

func filterExternalItems(items []model.SearchItem, username string) []model.SearchItem {
	kept := items[:0]
	for _, it := range items {
		owner := model.OwnerOf(it.RepoFullName)
		if owner != "" && !strings.EqualFold(owner, username) {
			kept = append(kept, it)
		}
	}
	return kept
}

// dedupeContributions drops later duplicates of the same (title, repo) pair,
// keeping the first occurrence in pipeline order.
func dedupeContributions(contributions []model.Contribution) []model.Contribution {
	seen := make(map[string]struct{}, len(contributions))
	kept := contributions[:0]
	for _, c := range contributions {
		key := c.Title + "\x00" + c.Repo
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, c)
	}
	return kept
}

// rankContributions sorts by impact tier descending, most recent date first.
// The sort is stable so reruns over identical input produce identical order.
func rankContributions(contributions []model.Contribution) {
	sort.SliceStable(contributions, func(i, j int) bool {
		if contributions[i].Impact != contributions[j].Impact {
			return contributions[i].Impact > contributions[j].Impact
		}
		return contributions[i].Date.After(contributions[j].Date)
	})
}

func sourceName(i int) string {
	if i < eventPageCount {
		return fmt.Sprintf("events page %d", i+1)
	}
	if i == eventPageCount {
		return "pull request search"
	}
	return "issue search"
}
