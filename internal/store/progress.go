package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/example/tutorcore/internal/mastery"
	"github.com/example/tutorcore/pkg/models"
)

// masteryTolerance absorbs float noise from a JSON round trip
const masteryTolerance = 1e-9

// InitProgress writes a fresh record with every concept of g not started.
// An existing record is loaded and returned as is; ResetProgress starts over.
func (s *FileStore) InitProgress(ctx context.Context, course string, g *models.Graph) (models.Progress, error) {
	if err := ctx.Err(); err != nil {
		return models.Progress{}, err
	}
	if err := CheckCourseName(course); err != nil {
		return models.Progress{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.progressDir(course), progressFile)
	if _, err := os.Stat(path); err == nil {
		var existing models.Progress
		if err := s.readProgress(path, &existing); err != nil {
			return models.Progress{}, err
		}
		return existing, nil
	}
	return s.writeFresh(course, g)
}

// ResetProgress replaces the record with a fresh one. Session logs are kept.
func (s *FileStore) ResetProgress(ctx context.Context, course string, g *models.Graph) (models.Progress, error) {
	if err := ctx.Err(); err != nil {
		return models.Progress{}, err
	}
	if err := CheckCourseName(course); err != nil {
		return models.Progress{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Info().Str("course", course).Msg("progress reset")
	return s.writeFresh(course, g)
}

func (s *FileStore) writeFresh(course string, g *models.Graph) (models.Progress, error) {
	p := models.NewProgress(course, g)
	if err := os.MkdirAll(filepath.Join(s.progressDir(course), sessionsDir), 0o755); err != nil {
		return models.Progress{}, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	if err := writeJSON(filepath.Join(s.progressDir(course), progressFile), p); err != nil {
		return models.Progress{}, err
	}
	return p, nil
}

// LoadProgress reads the learner's record for course. A record that does
// not parse, fails schema validation or carries another schema_version is
// returned as a *CorruptStateError.
func (s *FileStore) LoadProgress(ctx context.Context, course string) (models.Progress, error) {
	if err := ctx.Err(); err != nil {
		return models.Progress{}, err
	}
	if err := CheckCourseName(course); err != nil {
		return models.Progress{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var p models.Progress
	path := filepath.Join(s.progressDir(course), progressFile)
	if err := s.readProgress(path, &p); err != nil {
		return models.Progress{}, err
	}
	return p, nil
}

func (s *FileStore) readProgress(path string, p *models.Progress) error {
	if err := readJSON(path, p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrProgressNotFound, path)
		}
		return err
	}
	return CheckLoaded(path, p)
}

// CheckLoaded verifies a decoded record read from source. Failures come
// back as a *CorruptStateError naming source.
func CheckLoaded(source string, p *models.Progress) error {
	if p.SchemaVersion != models.ProgressSchemaVersion {
		return corrupt(source, fmt.Errorf("%w: %d", ErrSchemaVersion, p.SchemaVersion))
	}
	if err := validate.Struct(p); err != nil {
		return corrupt(source, err)
	}
	return nil
}

// SaveProgress writes p atomically. The record must belong to course and
// every stored mastery score must equal the score recomputed from its
// inputs; anything else is refused before touching disk. The derived
// status counters are refreshed on the way out.
func (s *FileStore) SaveProgress(ctx context.Context, course string, p models.Progress) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := CheckCourseName(course); err != nil {
		return err
	}
	if err := PrepareProgress(course, &p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeJSON(filepath.Join(s.progressDir(course), progressFile), p); err != nil {
		return err
	}
	s.log.Debug().
		Str("course", course).
		Int("mastered", p.Stats.ConceptsMastered).
		Int("learning", p.Stats.ConceptsLearning).
		Msg("progress saved")
	return nil
}

// PrepareProgress normalizes p for writing and rejects records that must
// not be persisted. Every ProgressStore runs it before a save.
func PrepareProgress(course string, p *models.Progress) error {
	if p.Course != course {
		return fmt.Errorf("%w: %q saved as %q", ErrCourseMismatch, p.Course, course)
	}
	switch p.SchemaVersion {
	case 0:
		p.SchemaVersion = models.ProgressSchemaVersion
	case models.ProgressSchemaVersion:
	default:
		return fmt.Errorf("%w: %d", ErrSchemaVersion, p.SchemaVersion)
	}
	if p.Concepts == nil {
		p.Concepts = map[string]models.ConceptProgress{}
	}
	for id, cp := range p.Concepts {
		if want := mastery.ComputeMasteryScore(cp); math.Abs(cp.MasteryScore-want) > masteryTolerance {
			return fmt.Errorf("%w: %s has %.4f, inputs give %.4f", ErrStaleMastery, id, cp.MasteryScore, want)
		}
	}
	p.Stats = p.Recount()
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProgress, err)
	}
	return nil
}
