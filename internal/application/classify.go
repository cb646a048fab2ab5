package application

import (
	"fmt"
	"time"

	"github.com/contriblens/contriblens/internal/domain/model"
)

// ClassifyEvent normalizes one public activity event into a Contribution.
// It never fails: missing optional fields degrade to placeholder titles, zero
// counts, and the Other kind.
func ClassifyEvent(repo model.Repository, event model.Event, now time.Time) model.Contribution {
	var (
		kind         model.ContributionKind
		title        string
		status       model.ContributionStatus
		linesChanged int
		outcome      Outcome
	)

	switch event.Kind {
	case model.EventPullRequest:
		kind = model.KindPullRequest
		title = "Pull Request"
		status = model.StatusOpen
		if pr := event.PullRequest; pr != nil {
			if pr.Title != "" {
				title = pr.Title
			}
			if pr.MergedAt != nil {
				status = model.StatusMerged
			} else if pr.ClosedAt != nil {
				status = model.StatusClosed
			}
			linesChanged = pr.Additions + pr.Deletions
			outcome.MergedAt = pr.MergedAt
		}

	case model.EventIssues:
		kind = model.KindIssue
		title = "Issue"
		status = model.StatusOpen
		if is := event.Issue; is != nil {
			if is.Title != "" {
				title = is.Title
			}
			if is.State == "closed" {
				status = model.StatusClosed
			}
			outcome.ClosedAt = is.ClosedAt
		}

	case model.EventPush:
		kind = model.KindPush
		commits := 1
		if event.Push != nil && event.Push.CommitCount > 0 {
			commits = event.Push.CommitCount
		}
		title = fmt.Sprintf("Pushed %d commit(s)", commits)
		status = model.StatusPushed

	case model.EventCreate:
		kind = model.KindCreated
		title = string(model.KindCreated) + " activity"
		status = model.StatusCompleted

	case model.EventOther:
		kind = model.KindOther
		title = string(model.KindOther) + " activity"
		status = model.StatusCompleted
	}

	outcome.Kind = kind

	return model.Contribution{
		Repo:         repo.FullName,
		RepoOwner:    repo.Owner,
		Kind:         kind,
		Title:        title,
		Impact:       ScoreImpact(repo, outcome, now),
		LinesChanged: linesChanged,
		Stars:        repo.Stars,
		Forks:        repo.Forks,
		Date:         dayOf(event.CreatedAt, now),
		Status:       status,
		Description:  fmt.Sprintf("%s in %s", kind, repo.Name),
	}
}

// ClassifySearchItem normalizes one search-index hit into a Contribution.
// Search payloads carry no diff stats, so LinesChanged is always zero.
func ClassifySearchItem(repo model.Repository, item model.SearchItem, now time.Time) model.Contribution {
	kind := model.KindIssue
	if item.IsPullRequest {
		kind = model.KindPullRequest
	}

	status := model.StatusOpen
	if item.State == "closed" {
		status = model.StatusClosed
		if item.IsPullRequest && item.MergedAt != nil {
			status = model.StatusMerged
		}
	}

	// Updated-at is preferred over created-at for recency of the record.
	date := item.UpdatedAt
	if date.IsZero() {
		date = item.CreatedAt
	}

	return model.Contribution{
		Repo:      repo.FullName,
		RepoOwner: repo.Owner,
		Kind:      kind,
		Title:     item.Title,
		Impact: ScoreImpact(repo, Outcome{
			Kind:     kind,
			MergedAt: item.MergedAt,
			ClosedAt: item.ClosedAt,
		}, now),
		Stars:       repo.Stars,
		Forks:       repo.Forks,
		Date:        dayOf(date, now),
		Status:      status,
		Description: fmt.Sprintf("%s in %s", kind, repo.Name),
	}
}

// dayOf truncates t to midnight UTC, falling back to the current day when the
// record carried no timestamp.
func dayOf(t, now time.Time) time.Time {
	if t.IsZero() {
		t = now
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
