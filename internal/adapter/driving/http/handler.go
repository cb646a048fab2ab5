// Package httphandler exposes the application services over a JSON HTTP API.
package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/contriblens/contriblens/internal/application"
	"github.com/contriblens/contriblens/internal/domain/model"
	"github.com/contriblens/contriblens/internal/domain/port/driven"
)

// Analyzer runs the contribution analysis pipeline for one username.
type Analyzer interface {
	Analyze(ctx context.Context, username string) (*model.Report, error)
}

// Discoverer runs a filtered repository discovery search.
type Discoverer interface {
	Discover(ctx context.Context, filter application.DiscoveryFilter) (*model.DiscoveryResult, error)
}

// loginPattern matches GitHub's username shape: alphanumeric runs separated
// by single hyphens, no leading or trailing hyphen.
var loginPattern = regexp.MustCompile(`^[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*$`)

// validLogin reports whether s is a plausible GitHub username.
func validLogin(s string) bool {
	return len(s) > 0 && len(s) <= 39 && loginPattern.MatchString(s)
}

// Handler serves the JSON API.
type Handler struct {
	analyzer      Analyzer
	discoverer    Discoverer
	profiles      driven.ProfileStore
	authenticated bool
	logger        *slog.Logger
}

// NewHandler creates a Handler. authenticated reports whether the GitHub
// client carries a token; it only changes the wording of rate-limit errors.
func NewHandler(analyzer Analyzer, discoverer Discoverer, profiles driven.ProfileStore, authenticated bool, logger *slog.Logger) *Handler {
	return &Handler{
		analyzer:      analyzer,
		discoverer:    discoverer,
		profiles:      profiles,
		authenticated: authenticated,
		logger:        logger,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/analysis/{username}", h.AnalyzeUser)
	mux.HandleFunc("GET /api/v1/discover", h.Discover)
	mux.HandleFunc("GET /api/v1/profiles/{username}", h.GetProfile)
	mux.HandleFunc("PUT /api/v1/profiles/{username}", h.PutProfile)
	mux.HandleFunc("POST /api/v1/profiles/{username}/points", h.AddPoints)
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// AnalyzeUser handles GET /api/v1/analysis/{username}.
func (h *Handler) AnalyzeUser(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if !validLogin(username) {
		writeError(w, http.StatusBadRequest, "invalid GitHub username")
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), username)
	if err != nil {
		h.writeUpstreamError(w, err, "analysis failed", "username", username)
		return
	}

	resp := toAnalysisResponse(report)
	if report.Empty() {
		resp.Message = "No public open source contributions found. The account may only " +
			"contribute to its own repositories, work in private repositories, or have " +
			"no recent activity."
	}
	writeJSON(w, http.StatusOK, resp)
}

// Discover handles GET /api/v1/discover.
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := application.DiscoveryFilter{
		Language:   q.Get("language"),
		Difficulty: q.Get("difficulty"),
		Type:       q.Get("type"),
		Sort:       q.Get("sort"),
		MinStars:   100,
		Page:       1,
	}

	if v := q.Get("min_stars"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "min_stars must be a non-negative integer")
			return
		}
		filter.MinStars = n
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		filter.Page = n
	}

	result, err := h.discoverer.Discover(r.Context(), filter)
	if err != nil {
		h.writeUpstreamError(w, err, "discovery failed")
		return
	}

	writeJSON(w, http.StatusOK, toDiscoveryResponse(result))
}

// GetProfile handles GET /api/v1/profiles/{username}.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	profile, err := h.profiles.Get(r.Context(), username)
	if err != nil {
		h.logger.Error("profile lookup failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if profile == nil {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// PutProfile handles PUT /api/v1/profiles/{username}. It creates the profile
// on first write and updates the linked account fields afterwards; the point
// balance is never touched here.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	var req UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GitHubUsername != "" && !validLogin(req.GitHubUsername) {
		writeError(w, http.StatusBadRequest, "invalid GitHub username")
		return
	}

	err := h.profiles.Upsert(r.Context(), model.Profile{
		Username:       username,
		Email:          req.Email,
		GitHubUsername: req.GitHubUsername,
	})
	if err != nil {
		h.logger.Error("profile upsert failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save profile")
		return
	}

	profile, err := h.profiles.Get(r.Context(), username)
	if err != nil || profile == nil {
		h.logger.Error("profile readback failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// AddPoints handles POST /api/v1/profiles/{username}/points.
func (h *Handler) AddPoints(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	var req AddPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Delta <= 0 {
		writeError(w, http.StatusBadRequest, "delta must be a positive integer")
		return
	}

	err := h.profiles.AddPoints(r.Context(), username, req.Delta)
	if errors.Is(err, driven.ErrProfileNotFound) {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}
	if err != nil {
		h.logger.Error("point grant failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add points")
		return
	}

	profile, err := h.profiles.Get(r.Context(), username)
	if err != nil || profile == nil {
		h.logger.Error("profile readback failed", "username", username, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// writeUpstreamError maps GitHub-facing errors onto API responses:
// unknown user to 404, rate limiting to 429 with the reset time, and
// everything else to 502.
func (h *Handler) writeUpstreamError(w http.ResponseWriter, err error, msg string, args ...any) {
	h.logger.Error(msg, append(args, "error", err)...)

	if errors.Is(err, model.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "GitHub user not found")
		return
	}

	var rateErr *model.RateLimitError
	if errors.As(err, &rateErr) {
		writeError(w, http.StatusTooManyRequests, rateLimitMessage(rateErr, h.authenticated))
		return
	}

	writeError(w, http.StatusBadGateway, "failed to fetch data from GitHub")
}

// rateLimitMessage formats the 429 body, including the reset time when the
// API reported one and a remedy when running without a token.
func rateLimitMessage(err *model.RateLimitError, authenticated bool) string {
	msg := "GitHub API rate limit exceeded"
	if !err.Reset.IsZero() {
		msg += fmt.Sprintf("; resets at %s", err.Reset.UTC().Format(time.RFC3339))
	}
	if !authenticated {
		msg += ". Configure CONTRIBLENS_GITHUB_TOKEN to raise the limit"
	}
	return msg
}
