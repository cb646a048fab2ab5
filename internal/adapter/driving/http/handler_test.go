package httphandler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/contriblens/contriblens/internal/adapter/driving/http"
	"github.com/contriblens/contriblens/internal/application"
	"github.com/contriblens/contriblens/internal/domain/model"
	"github.com/contriblens/contriblens/internal/domain/port/driven"
)

type fakeAnalyzer struct {
	report *model.Report
	err    error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string) (*model.Report, error) {
	return f.report, f.err
}

type fakeDiscoverer struct {
	result *model.DiscoveryResult
	err    error
	filter application.DiscoveryFilter
}

func (f *fakeDiscoverer) Discover(_ context.Context, filter application.DiscoveryFilter) (*model.DiscoveryResult, error) {
	f.filter = filter
	return f.result, f.err
}

type fakeProfileStore struct {
	profiles map[string]*model.Profile
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[string]*model.Profile)}
}

func (f *fakeProfileStore) Get(_ context.Context, username string) (*model.Profile, error) {
	p, ok := f.profiles[username]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakeProfileStore) Upsert(_ context.Context, profile model.Profile) error {
	existing, ok := f.profiles[profile.Username]
	if ok {
		existing.Email = profile.Email
		existing.GitHubUsername = profile.GitHubUsername
		return nil
	}
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = profile.CreatedAt
	f.profiles[profile.Username] = &profile
	return nil
}

func (f *fakeProfileStore) AddPoints(_ context.Context, username string, delta int) error {
	p, ok := f.profiles[username]
	if !ok {
		return driven.ErrProfileNotFound
	}
	p.Points += delta
	return nil
}

func newTestServer(t *testing.T, analyzer httphandler.Analyzer, discoverer httphandler.Discoverer, profiles driven.ProfileStore, authenticated bool) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := httphandler.NewHandler(analyzer, discoverer, profiles, authenticated, logger)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	server := httptest.NewServer(httphandler.ApplyMiddleware(mux, logger))
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, into any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if into != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{}, &fakeDiscoverer{}, newFakeProfileStore(), false)

	var body map[string]string
	status := getJSON(t, server.URL+"/api/v1/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestAnalyzeUser(t *testing.T) {
	report := &model.Report{
		User: model.User{Login: "octocat", Name: "The Octocat"},
		Contributions: []model.Contribution{
			{
				Repo:   "golang/go",
				Kind:   model.KindPullRequest,
				Title:  "Fix scheduler race",
				Impact: model.ImpactCritical,
				Stars:  120000,
				Date:   time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
				Status: model.StatusMerged,
			},
		},
		Stats: model.ContributionStats{
			TotalRepos:         1,
			TotalContributions: 1,
		},
	}
	server := newTestServer(t, &fakeAnalyzer{report: report}, &fakeDiscoverer{}, newFakeProfileStore(), false)

	var body httphandler.AnalysisResponse
	status := getJSON(t, server.URL+"/api/v1/analysis/octocat", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "octocat", body.User.Login)
	require.Len(t, body.Contributions, 1)
	assert.Equal(t, "golang/go", body.Contributions[0].Repo)
	assert.Equal(t, "Critical", body.Contributions[0].Impact)
	assert.Equal(t, "2026-08-20", body.Contributions[0].Date)
	assert.Empty(t, body.Message)
}

func TestAnalyzeUser_EmptyReportHasMessage(t *testing.T) {
	report := &model.Report{User: model.User{Login: "newbie"}}
	server := newTestServer(t, &fakeAnalyzer{report: report}, &fakeDiscoverer{}, newFakeProfileStore(), false)

	var body httphandler.AnalysisResponse
	status := getJSON(t, server.URL+"/api/v1/analysis/newbie", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body.Message)
}

func TestAnalyzeUser_NotFound(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{err: model.ErrUserNotFound}, &fakeDiscoverer{}, newFakeProfileStore(), false)

	status := getJSON(t, server.URL+"/api/v1/analysis/ghost", nil)

	assert.Equal(t, http.StatusNotFound, status)
}

func TestAnalyzeUser_RateLimited(t *testing.T) {
	reset := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	analyzer := &fakeAnalyzer{err: &model.RateLimitError{Reset: reset}}
	server := newTestServer(t, analyzer, &fakeDiscoverer{}, newFakeProfileStore(), false)

	var body map[string]string
	status := getJSON(t, server.URL+"/api/v1/analysis/octocat", &body)

	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, body["error"], "2026-08-30T12:00:00Z")
	assert.Contains(t, body["error"], "CONTRIBLENS_GITHUB_TOKEN")
}

func TestAnalyzeUser_RateLimitedAuthenticatedOmitsTokenHint(t *testing.T) {
	analyzer := &fakeAnalyzer{err: &model.RateLimitError{}}
	server := newTestServer(t, analyzer, &fakeDiscoverer{}, newFakeProfileStore(), true)

	var body map[string]string
	status := getJSON(t, server.URL+"/api/v1/analysis/octocat", &body)

	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.NotContains(t, body["error"], "CONTRIBLENS_GITHUB_TOKEN")
}

func TestAnalyzeUser_UpstreamFailure(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{err: assert.AnError}, &fakeDiscoverer{}, newFakeProfileStore(), false)

	status := getJSON(t, server.URL+"/api/v1/analysis/octocat", nil)

	assert.Equal(t, http.StatusBadGateway, status)
}

func TestAnalyzeUser_InvalidUsername(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{}, &fakeDiscoverer{}, newFakeProfileStore(), false)

	status := getJSON(t, server.URL+"/api/v1/analysis/-bad-", nil)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDiscover(t *testing.T) {
	discoverer := &fakeDiscoverer{
		result: &model.DiscoveryResult{
			TotalFound: 2,
			Recommendations: []model.RepoRecommendation{
				{
					FullName:             "golang/go",
					DisplayName:          "go",
					Difficulty:           model.DifficultyAdvanced,
					GoodFirstIssues:      42,
					GoodFirstIssuesKnown: true,
				},
			},
		},
	}
	server := newTestServer(t, &fakeAnalyzer{}, discoverer, newFakeProfileStore(), false)

	var body httphandler.DiscoveryResponse
	status := getJSON(t, server.URL+"/api/v1/discover?language=go&difficulty=beginner&min_stars=500&page=2", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, body.TotalFound)
	require.Len(t, body.Repositories, 1)
	assert.True(t, body.Repositories[0].GoodFirstIssuesKnown)

	assert.Equal(t, "go", discoverer.filter.Language)
	assert.Equal(t, "beginner", discoverer.filter.Difficulty)
	assert.Equal(t, 500, discoverer.filter.MinStars)
	assert.Equal(t, 2, discoverer.filter.Page)
}

func TestDiscover_Defaults(t *testing.T) {
	discoverer := &fakeDiscoverer{result: &model.DiscoveryResult{}}
	server := newTestServer(t, &fakeAnalyzer{}, discoverer, newFakeProfileStore(), false)

	status := getJSON(t, server.URL+"/api/v1/discover", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 100, discoverer.filter.MinStars)
	assert.Equal(t, 1, discoverer.filter.Page)
}

func TestDiscover_InvalidMinStars(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{}, &fakeDiscoverer{}, newFakeProfileStore(), false)

	status := getJSON(t, server.URL+"/api/v1/discover?min_stars=lots", nil)

	assert.Equal(t, http.StatusBadRequest, status)
}

func TestProfileLifecycle(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{}, &fakeDiscoverer{}, newFakeProfileStore(), false)
	client := server.Client()

	status := getJSON(t, server.URL+"/api/v1/profiles/alice", nil)
	assert.Equal(t, http.StatusNotFound, status)

	req, err := http.NewRequest(http.MethodPut, server.URL+"/api/v1/profiles/alice",
		strings.NewReader(`{"email":"alice@example.com","github_username":"alice-gh"}`))
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	var created httphandler.ProfileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "alice-gh", created.GitHubUsername)
	assert.Equal(t, 0, created.Points)

	resp, err = client.Post(server.URL+"/api/v1/profiles/alice/points", "application/json",
		strings.NewReader(`{"delta":25}`))
	require.NoError(t, err)
	var granted httphandler.ProfileResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&granted))
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 25, granted.Points)
}

func TestAddPoints_MissingProfile(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{}, &fakeDiscoverer{}, newFakeProfileStore(), false)

	resp, err := http.Post(server.URL+"/api/v1/profiles/ghost/points", "application/json",
		strings.NewReader(`{"delta":5}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddPoints_RejectsNonPositiveDelta(t *testing.T) {
	server := newTestServer(t, &fakeAnalyzer{}, &fakeDiscoverer{}, newFakeProfileStore(), false)

	resp, err := http.Post(server.URL+"/api/v1/profiles/alice/points", "application/json",
		strings.NewReader(`{"delta":-5}`))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
