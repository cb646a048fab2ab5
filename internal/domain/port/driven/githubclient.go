// Package driven defines the outbound port interfaces of the domain.
package driven

import (
	"context"

	"github.com/contriblens/contriblens/internal/domain/model"
)

// GitHubClient defines the driven port for reading from the GitHub API.
// Implementations map API failures to the domain error taxonomy:
// model.ErrUserNotFound for a missing account and *model.RateLimitError for
// HTTP 403/429 responses carrying a reset time.
type GitHubClient interface {
	// GetUser resolves a GitHub account by login.
	GetUser(ctx context.Context, login string) (*model.User, error)

	// ListUserEvents returns one page (up to 100 records) of the user's
	// public activity feed, newest first. Pages are 1-based.
	ListUserEvents(ctx context.Context, login string, page int) ([]model.Event, error)

	// SearchPullRequests returns up to 50 search-index hits for pull
	// requests authored by the user, most recently updated first.
	SearchPullRequests(ctx context.Context, login string) ([]model.SearchItem, error)

	// SearchIssues returns up to 30 search-index hits for issues authored
	// by the user, most recently updated first.
	SearchIssues(ctx context.Context, login string) ([]model.SearchItem, error)

	// GetRepository hydrates repository metadata by owner/name full name.
	GetRepository(ctx context.Context, fullName string) (*model.Repository, error)

	// SearchRepositories runs a repository search with the given qualifier
	// string, sort field, and 1-based page (30 results per page).
	SearchRepositories(ctx context.Context, query, sort string, page int) (int, []model.Repository, error)

	// CountGoodFirstIssues returns the number of open issues labeled
	// "good first issue" in the repository.
	CountGoodFirstIssues(ctx context.Context, repoFullName string) (int, error)
}
