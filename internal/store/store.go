package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/example/tutorcore/pkg/models"
)

// ProgressStore loads and saves a learner's progress for a course.
// Implementations make each save atomic: a reader sees the old record or
// the new one, never a mix.
type ProgressStore interface {
	LoadProgress(ctx context.Context, course string) (models.Progress, error)
	SaveProgress(ctx context.Context, course string, p models.Progress) error
}

// File names inside the data directory
const (
	coursesDir      = "courses"
	learnerDir      = "learner"
	sessionsDir     = "sessions"
	graphFile       = "knowledge-graph.json"
	curriculumFile  = "curriculum.json"
	configFile      = "config.json"
	progressFile    = "progress.json"
	profileFile     = "profile.json"
	sessionFileTime = "20060102T150405Z"
)

var validate = validator.New()

// FileStore keeps courses and progress as JSON files under a root directory:
//
//	courses/<course>/{knowledge-graph,curriculum,config}.json
//	learner/<course>/progress.json
//	learner/<course>/sessions/<timestamp>-<id>.json
//	learner/profile.json
type FileStore struct {
	mu   sync.Mutex
	root string
	log  zerolog.Logger
	now  func() time.Time
}

var _ ProgressStore = (*FileStore)(nil)

// NewFileStore creates the directory layout under root
func NewFileStore(root string, log zerolog.Logger) (*FileStore, error) {
	for _, dir := range []string{coursesDir, learnerDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	return &FileStore{
		root: root,
		log:  log.With().Str("component", "store").Logger(),
		now:  time.Now,
	}, nil
}

// Root returns the data directory
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) courseDir(course string) string {
	return filepath.Join(s.root, coursesDir, course)
}

func (s *FileStore) progressDir(course string) string {
	return filepath.Join(s.root, learnerDir, course)
}

// CheckCourseName rejects names that cannot be used as a directory name
func CheckCourseName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidCourseName, name)
	}
	return nil
}

// writeJSON writes v to path through a temp file in the same directory,
// synced before the rename.
func writeJSON(path string, v any) (err error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".state_*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", filepath.Base(path), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return nil
}

// readJSON decodes path into v. A missing file yields fs.ErrNotExist and a
// file that does not decode yields a *CorruptStateError.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fs.ErrNotExist
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return corrupt(path, err)
	}
	return nil
}
