package model

import "time"

// EventKind enumerates the public-event types the classifier understands.
// Anything outside the fixed set maps to EventOther, keeping the classifier's
// switch exhaustive over a closed enumeration.
type EventKind int

const (
	EventPullRequest EventKind = iota
	EventIssues
	EventPush
	EventCreate
	EventOther
)

// Event is a normalized record from a user's public activity feed. Exactly
// one of the payload pointers is set, matching Kind; EventOther carries only
// RawType for the synthesized description.
type Event struct {
	Kind         EventKind
	RepoFullName string
	CreatedAt    time.Time

	PullRequest *PullRequestPayload
	Issue       *IssuePayload
	Push        *PushPayload
	RawType     string
}

// PullRequestPayload holds the pull-request fields used by classification.
type PullRequestPayload struct {
	Title     string
	MergedAt  *time.Time
	ClosedAt  *time.Time
	Additions int
	Deletions int
}

// IssuePayload holds the issue fields used by classification.
type IssuePayload struct {
	Title    string
	State    string
	ClosedAt *time.Time
}

// PushPayload holds the push fields used by classification.
type PushPayload struct {
	CommitCount int
}

// SearchItem is an issue-or-pull-request hit from the search index, authored
// by the queried user. RepoFullName is derived from the item's repository URL
// by the adapter.
type SearchItem struct {
	Title         string
	State         string
	IsPullRequest bool
	MergedAt      *time.Time
	ClosedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	RepoFullName  string
}
