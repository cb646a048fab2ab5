package model

import (
	"strings"
	"time"
)

// Repository is hydrated repository metadata, shared read-only across all
// contributions referencing it within one analysis.
type Repository struct {
	FullName    string
	Owner       string
	Name        string
	Description string
	Language    string
	Stars       int
	Forks       int
	OpenIssues  int
	HasWiki     bool
	Topics      []string
	License     string
	HTMLURL     string
	PushedAt    time.Time
}

// User is the GitHub profile of the analyzed account.
type User struct {
	Login     string
	Name      string
	Bio       string
	AvatarURL string
}

// OwnerOf returns the owner segment of an owner/name repository full name,
// or "" if the name is not in that form.
func OwnerOf(fullName string) string {
	owner, _, ok := strings.Cut(fullName, "/")
	if !ok {
		return ""
	}
	return owner
}
