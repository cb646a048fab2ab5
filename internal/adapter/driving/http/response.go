package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/contriblens/contriblens/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// AnalysisResponse is the JSON representation of one analysis result.
type AnalysisResponse struct {
	User          UserResponse           `json:"user"`
	Contributions []ContributionResponse `json:"contributions"`
	Stats         StatsResponse          `json:"stats"`

	// Message explains an empty result; present only when no qualifying
	// contributions were found.
	Message string `json:"message,omitempty"`
}

// UserResponse is the JSON representation of the analyzed GitHub account.
type UserResponse struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// ContributionResponse is the JSON representation of a single contribution.
type ContributionResponse struct {
	Repo         string `json:"repo"`
	Type         string `json:"type"`
	Title        string `json:"title"`
	Impact       string `json:"impact"`
	LinesChanged int    `json:"lines_changed"`
	Stars        int    `json:"stars"`
	Forks        int    `json:"forks"`
	Date         string `json:"date"` // YYYY-MM-DD.
	Status       string `json:"status"`
	Description  string `json:"description"`
}

// StatsResponse is the JSON representation of the summary statistics.
type StatsResponse struct {
	TotalRepos              int `json:"total_repos"`
	TotalContributions      int `json:"total_contributions"`
	HighImpactContributions int `json:"high_impact_contributions"`
	AvgStars                int `json:"avg_stars"`
	ImpactScore             int `json:"impact_score"`
	CollaborationScore      int `json:"collaboration_score"`
}

// DiscoveryResponse is one page of repository recommendations.
type DiscoveryResponse struct {
	TotalFound   int                      `json:"total_found"`
	Repositories []RecommendationResponse `json:"repositories"`
}

// RecommendationResponse is the JSON representation of a recommended repository.
type RecommendationResponse struct {
	FullName             string   `json:"full_name"`
	DisplayName          string   `json:"display_name"`
	Description          string   `json:"description"`
	Language             string   `json:"language"`
	Stars                int      `json:"stars"`
	Forks                int      `json:"forks"`
	OpenIssues           int      `json:"open_issues"`
	License              string   `json:"license"`
	URL                  string   `json:"url"`
	Owner                string   `json:"owner"`
	LastPushed           string   `json:"last_pushed"`
	Difficulty           string   `json:"difficulty"`
	ContributorFriendly  int      `json:"contributor_friendly"`
	MaintainerActivity   string   `json:"maintainer_activity"`
	Tags                 []string `json:"tags"`
	GoodFirstIssues      int      `json:"good_first_issues"`
	GoodFirstIssuesKnown bool     `json:"good_first_issues_known"`
}

// ProfileResponse is the JSON representation of a stored profile.
type ProfileResponse struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	GitHubUsername string `json:"github_username"`
	Points         int    `json:"points"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// UpsertProfileRequest is the JSON body for the profile update endpoint.
type UpsertProfileRequest struct {
	Email          string `json:"email"`
	GitHubUsername string `json:"github_username"`
}

// AddPointsRequest is the JSON body for the point grant endpoint.
type AddPointsRequest struct {
	Delta int `json:"delta"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toAnalysisResponse converts a domain Report to its JSON representation.
func toAnalysisResponse(report *model.Report) AnalysisResponse {
	contributions := make([]ContributionResponse, 0, len(report.Contributions))
	for _, c := range report.Contributions {
		contributions = append(contributions, ContributionResponse{
			Repo:         c.Repo,
			Type:         string(c.Kind),
			Title:        c.Title,
			Impact:       c.Impact.String(),
			LinesChanged: c.LinesChanged,
			Stars:        c.Stars,
			Forks:        c.Forks,
			Date:         c.Date.Format("2006-01-02"),
			Status:       string(c.Status),
			Description:  c.Description,
		})
	}

	return AnalysisResponse{
		User: UserResponse{
			Login:     report.User.Login,
			Name:      report.User.Name,
			Bio:       report.User.Bio,
			AvatarURL: report.User.AvatarURL,
		},
		Contributions: contributions,
		Stats: StatsResponse{
			TotalRepos:              report.Stats.TotalRepos,
			TotalContributions:      report.Stats.TotalContributions,
			HighImpactContributions: report.Stats.HighImpactContributions,
			AvgStars:                report.Stats.AvgStars,
			ImpactScore:             report.Stats.ImpactScore,
			CollaborationScore:      report.Stats.CollaborationScore,
		},
	}
}

// toDiscoveryResponse converts a DiscoveryResult to its JSON representation.
func toDiscoveryResponse(result *model.DiscoveryResult) DiscoveryResponse {
	repos := make([]RecommendationResponse, 0, len(result.Recommendations))
	for _, rec := range result.Recommendations {
		tags := rec.Tags
		if tags == nil {
			tags = []string{}
		}
		repos = append(repos, RecommendationResponse{
			FullName:             rec.FullName,
			DisplayName:          rec.DisplayName,
			Description:          rec.Description,
			Language:             rec.Language,
			Stars:                rec.Stars,
			Forks:                rec.Forks,
			OpenIssues:           rec.OpenIssues,
			License:              rec.License,
			URL:                  rec.URL,
			Owner:                rec.Owner,
			LastPushed:           rec.LastPushed.UTC().Format(time.RFC3339),
			Difficulty:           string(rec.Difficulty),
			ContributorFriendly:  rec.ContributorFriendly,
			MaintainerActivity:   rec.MaintainerActivity,
			Tags:                 tags,
			GoodFirstIssues:      rec.GoodFirstIssues,
			GoodFirstIssuesKnown: rec.GoodFirstIssuesKnown,
		})
	}

	return DiscoveryResponse{
		TotalFound:   result.TotalFound,
		Repositories: repos,
	}
}

// toProfileResponse converts a domain Profile to its JSON representation.
func toProfileResponse(profile *model.Profile) ProfileResponse {
	return ProfileResponse{
		Username:       profile.Username,
		Email:          profile.Email,
		GitHubUsername: profile.GitHubUsername,
		Points:         profile.Points,
		CreatedAt:      profile.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      profile.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
