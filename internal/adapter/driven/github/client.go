// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"

	"github.com/contriblens/contriblens/internal/domain/model"
	"github.com/contriblens/contriblens/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh            *gh.Client
	authenticated bool
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. TTL fetch cache (replays successful GETs for cacheTTL)
//  2. go-github-ratelimit (secondary rate limit middleware)
//  3. go-github (GitHub REST API client, bearer auth when a token is set)
//
// An empty token is valid configuration: requests run unauthenticated at the
// lower rate limit.
func NewClient(token string, cacheTTL, timeout time.Duration) *Client {
	cached := newCacheTransport(http.DefaultTransport, cacheTTL)
	httpClient := github_ratelimit.NewClient(cached)
	httpClient.Timeout = timeout

	client := gh.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{
		gh:            client,
		authenticated: token != "",
	}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// Authenticated reports whether a token was configured. Callers use this to
// tailor the rate-limit remedy message.
func (c *Client) Authenticated() bool {
	return c.authenticated
}

// GetUser resolves a GitHub account by login.
func (c *Client) GetUser(ctx context.Context, login string) (*model.User, error) {
	user, resp, err := c.gh.Users.Get(ctx, login)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("user %s: %w", login, model.ErrUserNotFound)
		}
		return nil, mapAPIError("fetching user "+login, err)
	}

	logRateLimit(resp, "users/"+login, 0, 1)

	return &model.User{
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		Bio:       user.GetBio(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}

// ListUserEvents returns one page of the user's public activity feed mapped
// to domain events.
func (c *Client) ListUserEvents(ctx context.Context, login string, page int) ([]model.Event, error) {
	opts := &gh.ListOptions{PerPage: 100, Page: page}

	events, resp, err := c.gh.Activity.ListEventsPerformedByUser(ctx, login, true, opts)
	if err != nil {
		return nil, mapAPIError(fmt.Sprintf("listing events for %s (page %d)", login, page), err)
	}

	logRateLimit(resp, login+"/events", page, len(events))

	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		out = append(out, mapEvent(e))
	}

	return out, nil
}

// SearchPullRequests returns pull requests authored by the user from the
// search index, most recently updated first.
func (c *Client) SearchPullRequests(ctx context.Context, login string) ([]model.SearchItem, error) {
	return c.searchAuthored(ctx, "type:pr author:"+login, 50)
}

// SearchIssues returns issues authored by the user from the search index,
// most recently updated first.
func (c *Client) SearchIssues(ctx context.Context, login string) ([]model.SearchItem, error) {
	return c.searchAuthored(ctx, "type:issue author:"+login, 30)
}

func (c *Client) searchAuthored(ctx context.Context, query string, perPage int) ([]model.SearchItem, error) {
	opts := &gh.SearchOptions{
		Sort:        "updated",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	result, resp, err := c.gh.Search.Issues(ctx, query, opts)
	if err != nil {
		return nil, mapAPIError(fmt.Sprintf("searching %q", query), err)
	}

	logRateLimit(resp, "search/issues", 0, len(result.Issues))

	items := make([]model.SearchItem, 0, len(result.Issues))
	for _, issue := range result.Issues {
		items = append(items, mapSearchItem(issue))
	}

	return items, nil
}

// GetRepository hydrates repository metadata by owner/name full name.
func (c *Client) GetRepository(ctx context.Context, fullName string) (*model.Repository, error) {
	owner, name, err := splitRepo(fullName)
	if err != nil {
		return nil, err
	}

	repo, resp, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, mapAPIError("fetching repository "+fullName, err)
	}

	logRateLimit(resp, "repos/"+fullName, 0, 1)

	mapped := mapRepository(repo)
	return &mapped, nil
}

// SearchRepositories runs a repository search, returning the total match
// count and one page of 30 results.
func (c *Client) SearchRepositories(ctx context.Context, query, sort string, page int) (int, []model.Repository, error) {
	opts := &gh.SearchOptions{
		Sort:        sort,
		Order:       "desc",
		ListOptions: gh.ListOptions{PerPage: 30, Page: page},
	}

	result, resp, err := c.gh.Search.Repositories(ctx, query, opts)
	if err != nil {
		return 0, nil, mapAPIError(fmt.Sprintf("searching repositories %q", query), err)
	}

	logRateLimit(resp, "search/repositories", page, len(result.Repositories))

	repos := make([]model.Repository, 0, len(result.Repositories))
	for _, r := range result.Repositories {
		repos = append(repos, mapRepository(r))
	}

	return result.GetTotal(), repos, nil
}

// CountGoodFirstIssues returns the number of open "good first issue" issues
// in the repository, using the search index total rather than listing them.
func (c *Client) CountGoodFirstIssues(ctx context.Context, repoFullName string) (int, error) {
	query := fmt.Sprintf(`repo:%s label:"good first issue" state:open`, repoFullName)
	opts := &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: 1}}

	result, resp, err := c.gh.Search.Issues(ctx, query, opts)
	if err != nil {
		return 0, mapAPIError("counting good first issues for "+repoFullName, err)
	}

	logRateLimit(resp, "search/issues", 0, 1)

	return result.GetTotal(), nil
}

// mapEvent converts a raw feed event to the domain sum type. Unknown or
// unparseable payloads degrade to EventOther rather than failing.
func mapEvent(e *gh.Event) model.Event {
	ev := model.Event{
		Kind:         model.EventOther,
		RepoFullName: e.GetRepo().GetName(),
		CreatedAt:    e.GetCreatedAt().Time,
		RawType:      e.GetType(),
	}

	payload, err := e.ParsePayload()
	if err != nil {
		return ev
	}

	switch p := payload.(type) {
	case *gh.PullRequestEvent:
		ev.Kind = model.EventPullRequest
		pr := p.GetPullRequest()
		ev.PullRequest = &model.PullRequestPayload{
			Title:     pr.GetTitle(),
			MergedAt:  timePtr(pr.MergedAt),
			ClosedAt:  timePtr(pr.ClosedAt),
			Additions: pr.GetAdditions(),
			Deletions: pr.GetDeletions(),
		}
	case *gh.IssuesEvent:
		ev.Kind = model.EventIssues
		issue := p.GetIssue()
		ev.Issue = &model.IssuePayload{
			Title:    issue.GetTitle(),
			State:    issue.GetState(),
			ClosedAt: timePtr(issue.ClosedAt),
		}
	case *gh.PushEvent:
		ev.Kind = model.EventPush
		count := len(p.Commits)
		if count == 0 {
			count = p.GetSize()
		}
		ev.Push = &model.PushPayload{CommitCount: count}
	case *gh.CreateEvent:
		ev.Kind = model.EventCreate
	}

	return ev
}

// mapSearchItem converts a search-index issue to a domain SearchItem,
// deriving the repository full name from the item's repository URL.
func mapSearchItem(issue *gh.Issue) model.SearchItem {
	item := model.SearchItem{
		Title:         issue.GetTitle(),
		State:         issue.GetState(),
		IsPullRequest: issue.IsPullRequest(),
		ClosedAt:      timePtr(issue.ClosedAt),
		CreatedAt:     issue.GetCreatedAt().Time,
		UpdatedAt:     issue.GetUpdatedAt().Time,
		RepoFullName:  repoNameFromURL(issue.GetRepositoryURL()),
	}

	if links := issue.GetPullRequestLinks(); links != nil {
		item.MergedAt = timePtr(links.MergedAt)
	}

	return item
}

// mapRepository converts a go-github Repository to the domain model. It uses
// GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(repo *gh.Repository) model.Repository {
	owner := repo.GetOwner().GetLogin()
	if owner == "" {
		owner = model.OwnerOf(repo.GetFullName())
	}

	return model.Repository{
		FullName:    repo.GetFullName(),
		Owner:       owner,
		Name:        repo.GetName(),
		Description: repo.GetDescription(),
		Language:    repo.GetLanguage(),
		Stars:       repo.GetStargazersCount(),
		Forks:       repo.GetForksCount(),
		OpenIssues:  repo.GetOpenIssuesCount(),
		HasWiki:     repo.GetHasWiki(),
		Topics:      repo.Topics,
		License:     repo.GetLicense().GetName(),
		HTMLURL:     repo.GetHTMLURL(),
		PushedAt:    repo.GetPushedAt().Time,
	}
}

// mapAPIError translates go-github's typed rate-limit errors into the domain
// taxonomy, preserving the reported reset time.
func mapAPIError(op string, err error) error {
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%s: %w", op, &model.RateLimitError{Reset: rateErr.Rate.Reset.Time})
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var reset time.Time
		if abuseErr.RetryAfter != nil {
			reset = time.Now().Add(*abuseErr.RetryAfter)
		}
		return fmt.Errorf("%s: %w", op, &model.RateLimitError{Reset: reset})
	}

	return fmt.Errorf("%s: %w", op, err)
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// timePtr unwraps an optional go-github timestamp.
func timePtr(ts *gh.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time
	return &t
}

// repoNameFromURL extracts the owner/name pair from an API repository URL.
func repoNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return ""
	}

	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}
