package model

import "time"

// Profile is a locally persisted account that can link a GitHub username and
// accumulate contribution points. Computed analysis results are never stored;
// only the profile itself is.
type Profile struct {
	ID             int64
	Username       string
	Email          string
	GitHubUsername string
	Points         int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
