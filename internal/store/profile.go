package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/example/tutorcore/pkg/models"
)

// LoadProfile reads the learner profile, creating the default one on first use
func (s *FileStore) LoadProfile(ctx context.Context) (models.Profile, error) {
	if err := ctx.Err(); err != nil {
		return models.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.root, learnerDir, profileFile)
	var p models.Profile
	err := readJSON(path, &p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		p = models.NewProfile(s.now())
		if err := writeJSON(path, p); err != nil {
			return models.Profile{}, err
		}
		return p, nil
	case err != nil:
		return models.Profile{}, err
	}
	if err := validate.Struct(p); err != nil {
		return models.Profile{}, corrupt(path, err)
	}
	return p, nil
}

// SaveProfile writes the learner profile
func (s *FileStore) SaveProfile(ctx context.Context, p models.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("store: invalid profile: %w", err)
	}
	for _, c := range p.ActiveCourses {
		if err := CheckCourseName(c); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(filepath.Join(s.root, learnerDir, profileFile), p)
}
