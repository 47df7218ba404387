package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/example/tutorcore/internal/graph"
	"github.com/example/tutorcore/pkg/models"
)

// InitCourse validates a course and writes its three files. A graph that
// fails ValidateGraph is rejected with the joined validation errors.
// Pedagogy warnings are returned, and logged, but do not block the write.
func (s *FileStore) InitCourse(ctx context.Context, course models.Course, th graph.Thresholds) ([]graph.Warning, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := CheckCourseName(course.Name); err != nil {
		return nil, err
	}
	if err := checkCourse(course); err != nil {
		return nil, err
	}
	if errs := graph.ValidateGraph(course.Graph); len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	warnings := graph.ValidateGraphPedagogy(course.Graph, th)

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.courseDir(course.Name)
	files := []struct {
		name string
		v    any
	}{
		{graphFile, course.Graph},
		{curriculumFile, course.Curriculum},
		{configFile, course.Config},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.v); err != nil {
			return nil, err
		}
	}

	for _, w := range warnings {
		s.log.Warn().Str("course", course.Name).Str("concept", w.ConceptID).Msg(w.Message)
	}
	s.log.Info().
		Str("course", course.Name).
		Int("concepts", course.Graph.Len()).
		Int("warnings", len(warnings)).
		Msg("course initialized")
	return warnings, nil
}

func checkCourse(course models.Course) error {
	if course.Graph == nil {
		return fmt.Errorf("%w: %s has no knowledge graph", ErrInvalidCourse, course.Name)
	}
	if course.Graph.SchemaVersion != models.GraphSchemaVersion {
		return fmt.Errorf("%w: graph schema_version %d", ErrSchemaVersion, course.Graph.SchemaVersion)
	}
	if course.Config.Domain == nil {
		return fmt.Errorf("%w: %s has no domain config", ErrInvalidCourse, course.Name)
	}
	if err := course.Config.Domain.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCourse, err)
	}
	for _, u := range course.Curriculum.Units {
		for _, id := range u.Concepts {
			if !course.Graph.Has(id) {
				return fmt.Errorf("%w: unit %q lists unknown concept %q", ErrInvalidCourse, u.ID, id)
			}
		}
	}
	return nil
}

// LoadCourse reads a course written by InitCourse. The graph is validated
// again; a graph that no longer validates is reported as corrupt.
func (s *FileStore) LoadCourse(ctx context.Context, name string) (models.Course, error) {
	if err := ctx.Err(); err != nil {
		return models.Course{}, err
	}
	if err := CheckCourseName(name); err != nil {
		return models.Course{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.courseDir(name)
	course := models.Course{Name: name, Graph: &models.Graph{}}
	files := []struct {
		name string
		v    any
	}{
		{graphFile, course.Graph},
		{curriculumFile, &course.Curriculum},
		{configFile, &course.Config},
	}
	for _, f := range files {
		if err := readJSON(filepath.Join(dir, f.name), f.v); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return models.Course{}, fmt.Errorf("%w: %s (missing %s)", ErrCourseNotFound, name, f.name)
			}
			return models.Course{}, err
		}
	}

	graphPath := filepath.Join(dir, graphFile)
	if v := course.Graph.SchemaVersion; v != models.GraphSchemaVersion {
		return models.Course{}, corrupt(graphPath, fmt.Errorf("%w: %d", ErrSchemaVersion, v))
	}
	if errs := graph.ValidateGraph(course.Graph); len(errs) > 0 {
		return models.Course{}, corrupt(graphPath, errors.Join(errs...))
	}
	return course, nil
}

// ListCourses returns the course names in sorted order
func (s *FileStore) ListCourses(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.root, coursesDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && CheckCourseName(e.Name()) == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
