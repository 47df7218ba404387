package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/example/tutorcore/pkg/models"
)

// AppendSessionLog writes log to the course's sessions directory and
// returns the stored log and its path. A missing ID is filled with a new
// UUID and a zero EndedAt with the current time.
func (s *FileStore) AppendSessionLog(ctx context.Context, course string, log models.SessionLog) (models.SessionLog, string, error) {
	if err := ctx.Err(); err != nil {
		return models.SessionLog{}, "", err
	}
	if err := CheckCourseName(course); err != nil {
		return models.SessionLog{}, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path, log, err := s.appendSessionLog(course, log)
	return log, path, err
}

func (s *FileStore) appendSessionLog(course string, log models.SessionLog) (string, models.SessionLog, error) {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Course == "" {
		log.Course = course
	}
	if log.EndedAt.IsZero() {
		log.EndedAt = s.now().UTC()
	}
	if log.StartedAt.IsZero() {
		log.StartedAt = log.EndedAt
	}

	name := fmt.Sprintf("%s-%s.json", log.EndedAt.UTC().Format(sessionFileTime), log.ID)
	path := filepath.Join(s.progressDir(course), sessionsDir, name)
	if err := writeJSON(path, log); err != nil {
		return "", models.SessionLog{}, err
	}
	s.log.Info().
		Str("course", course).
		Str("session", log.ID).
		Int("outcomes", len(log.Outcomes)).
		Msg("session logged")
	return path, log, nil
}

// FinishSession logs a completed session and folds it into p: the session
// counters grow, LastSession is replaced, and the record is saved. The log
// is written first so a failed save never loses it.
func (s *FileStore) FinishSession(ctx context.Context, course string, p models.Progress, log models.SessionLog) (models.Progress, error) {
	if err := ctx.Err(); err != nil {
		return p, err
	}
	if err := CheckCourseName(course); err != nil {
		return p, err
	}

	next := p.Clone()
	if err := PrepareProgress(course, &next); err != nil {
		return p, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, log, err := s.appendSessionLog(course, log)
	if err != nil {
		return p, err
	}

	summary := log.Summary()
	next.LastSession = &summary
	next.Stats.TotalSessions++
	if d := log.EndedAt.Sub(log.StartedAt); d > 0 {
		next.Stats.TotalPracticeMinutes += int(math.Ceil(d.Minutes()))
	}

	if err := writeJSON(filepath.Join(s.progressDir(course), progressFile), next); err != nil {
		return p, err
	}
	return next, nil
}

// LoadSessionLogs returns the course's session logs, oldest first
func (s *FileStore) LoadSessionLogs(ctx context.Context, course string) ([]models.SessionLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := CheckCourseName(course); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.progressDir(course), sessionsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.SessionLog{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	logs := make([]models.SessionLog, 0, len(names))
	for _, name := range names {
		var l models.SessionLog
		if err := readJSON(filepath.Join(dir, name), &l); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}
