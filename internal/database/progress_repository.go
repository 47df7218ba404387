package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/tutorcore/internal/store"
	"github.com/example/tutorcore/pkg/models"
)

var _ store.ProgressStore = (*Store)(nil)

// LoadProgress reads the record for course. Rows that do not decode or
// fail validation come back as a *store.CorruptStateError.
func (s *Store) LoadProgress(ctx context.Context, course string) (models.Progress, error) {
	if err := store.CheckCourseName(course); err != nil {
		return models.Progress{}, err
	}

	var data string
	query := s.db.Rebind("SELECT data FROM progress WHERE course_name = ?")
	err := s.db.QueryRowxContext(ctx, query, course).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Progress{}, fmt.Errorf("%w: %s", store.ErrProgressNotFound, course)
	}
	if err != nil {
		return models.Progress{}, fmt.Errorf("failed to get progress: %w", err)
	}

	source := "progress/" + course
	var p models.Progress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return models.Progress{}, &store.CorruptStateError{Path: source, Err: err}
	}
	if err := store.CheckLoaded(source, &p); err != nil {
		return models.Progress{}, err
	}
	return p, nil
}

// SaveProgress upserts the record inside a transaction, after the same
// checks the file store runs.
func (s *Store) SaveProgress(ctx context.Context, course string, p models.Progress) error {
	if err := store.CheckCourseName(course); err != nil {
		return err
	}
	if err := store.PrepareProgress(course, &p); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO progress (course_name, schema_version, data, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (course_name) DO UPDATE SET
			schema_version = excluded.schema_version,
			data = excluded.data,
			updated_at = excluded.updated_at
	`)
	if _, err := tx.ExecContext(ctx, query, course, p.SchemaVersion, string(data), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit progress: %w", err)
	}

	s.log.Debug().
		Str("course", course).
		Int("mastered", p.Stats.ConceptsMastered).
		Msg("progress saved")
	return nil
}

// ListProgressCourses returns the courses that have a stored record
func (s *Store) ListProgressCourses(ctx context.Context) ([]string, error) {
	var courses []string
	if err := s.db.SelectContext(ctx, &courses, "SELECT course_name FROM progress ORDER BY course_name"); err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return courses, nil
}
