package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/contriblens/contriblens/internal/domain/model"
	"github.com/contriblens/contriblens/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ProfileStore = (*ProfileRepo)(nil)

// ProfileRepo is the SQLite implementation of the ProfileStore port.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepo creates a ProfileRepo backed by the given DB.
func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get retrieves a profile by username. Returns nil, nil if absent.
func (r *ProfileRepo) Get(ctx context.Context, username string) (*model.Profile, error) {
	const query = `SELECT id, username, email, github_username, points, created_at, updated_at
		FROM profiles WHERE username = ?`

	profile, err := scanProfile(r.db.Reader.QueryRowContext(ctx, query, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", username, err)
	}

	return profile, nil
}

// Upsert inserts the profile or updates its email and linked GitHub username.
// Points are not touched on update; AddPoints owns the point total.
func (r *ProfileRepo) Upsert(ctx context.Context, profile model.Profile) error {
	const query = `INSERT INTO profiles (username, email, github_username, points, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			email = excluded.email,
			github_username = excluded.github_username,
			updated_at = excluded.updated_at`

	now := time.Now().UTC().Format(time.RFC3339)

	_, err := r.db.Writer.ExecContext(ctx, query,
		profile.Username, profile.Email, profile.GitHubUsername, profile.Points, now, now)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", profile.Username, err)
	}

	return nil
}

// AddPoints atomically adds delta to the profile's point total.
func (r *ProfileRepo) AddPoints(ctx context.Context, username string, delta int) error {
	const query = `UPDATE profiles SET points = points + ?, updated_at = ? WHERE username = ?`

	result, err := r.db.Writer.ExecContext(ctx, query, delta, time.Now().UTC().Format(time.RFC3339), username)
	if err != nil {
		return fmt.Errorf("add points for %s: %w", username, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("add points for %s: %w", username, driven.ErrProfileNotFound)
	}

	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner) (*model.Profile, error) {
	var profile model.Profile
	var createdAt, updatedAt string

	err := s.Scan(&profile.ID, &profile.Username, &profile.Email,
		&profile.GitHubUsername, &profile.Points, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if profile.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if profile.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &profile, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
