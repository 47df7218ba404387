package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tutorcore/internal/graph"
	"github.com/example/tutorcore/internal/mastery"
	"github.com/example/tutorcore/pkg/models"
)

var t0 = time.Date(2025, 4, 2, 8, 30, 0, 0, time.UTC)

func newStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	s.now = func() time.Time { return t0 }
	return s
}

func sampleCourse(t *testing.T, name string) models.Course {
	t.Helper()
	g, err := models.NewGraph(
		models.Concept{ID: "values", Title: "Values", BloomTarget: models.BloomUnderstand, Difficulty: 0.1, Unit: "basics"},
		models.Concept{ID: "functions", Title: "Functions", Prerequisites: []string{"values"}, BloomTarget: models.BloomApply, Difficulty: 0.4, Unit: "basics"},
		models.Concept{ID: "closures", Prerequisites: []string{"functions"}, BloomTarget: models.BloomAnalyze, Difficulty: 0.7,
			Metadata: map[string]any{"examples": "counter"}},
	)
	require.NoError(t, err)
	return models.Course{
		Name:  name,
		Graph: g,
		Curriculum: models.Curriculum{Units: []models.Unit{
			{ID: "basics", Title: "Basics", Concepts: []string{"values", "functions"}},
			{ID: "advanced", Title: "Advanced", Concepts: []string{"closures"}},
		}},
		Config: models.CourseConfig{
			Name:             name,
			SessionMinutes:   30,
			DesiredRetention: 0.9,
			Domain:           models.TechnicalConfig{Language: "go", Tooling: []string{"go test"}},
		},
	}
}

func TestInitAndLoadCourse(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	course := sampleCourse(t, "go-basics")

	warnings, err := s.InitCourse(ctx, course, graph.DefaultThresholds())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	for _, f := range []string{graphFile, curriculumFile, configFile} {
		assert.FileExists(t, filepath.Join(s.Root(), coursesDir, "go-basics", f))
	}

	loaded, err := s.LoadCourse(ctx, "go-basics")
	require.NoError(t, err)
	assert.Equal(t, course.Name, loaded.Name)
	assert.Equal(t, course.Graph.IDs(), loaded.Graph.IDs())
	assert.Equal(t, course.Graph.Concepts(), loaded.Graph.Concepts())
	assert.Equal(t, course.Curriculum, loaded.Curriculum)
	assert.Equal(t, course.Config, loaded.Config)
}

func TestInitCourseRejectsCycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	course := sampleCourse(t, "loop")
	g, err := models.NewGraph(
		models.Concept{ID: "a", Prerequisites: []string{"b"}, BloomTarget: models.BloomApply},
		models.Concept{ID: "b", Prerequisites: []string{"a"}, BloomTarget: models.BloomApply},
	)
	require.NoError(t, err)
	course.Graph = g
	course.Curriculum = models.Curriculum{}

	_, err = s.InitCourse(ctx, course, graph.DefaultThresholds())
	assert.ErrorIs(t, err, graph.ErrInvalidGraph)

	_, err = s.LoadCourse(ctx, "loop")
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestInitCourseReturnsPedagogyWarnings(t *testing.T) {
	s := newStore(t)
	course := sampleCourse(t, "trivia")
	g, err := models.NewGraph(
		models.Concept{ID: "dates", BloomTarget: models.BloomRemember, Difficulty: 0.9},
		models.Concept{ID: "causes", Prerequisites: []string{"dates"}, BloomTarget: models.BloomAnalyze, Difficulty: 0.5},
	)
	require.NoError(t, err)
	course.Graph = g
	course.Curriculum = models.Curriculum{}

	warnings, err := s.InitCourse(context.Background(), course, graph.DefaultThresholds())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "dates", warnings[0].ConceptID)

	_, err = s.LoadCourse(context.Background(), "trivia")
	assert.NoError(t, err)
}

func TestInitCourseRejectsBadInput(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	course := sampleCourse(t, "x")
	course.Curriculum.Units[0].Concepts = append(course.Curriculum.Units[0].Concepts, "ghost")
	_, err := s.InitCourse(ctx, course, graph.Thresholds{})
	assert.ErrorIs(t, err, ErrInvalidCourse)

	course = sampleCourse(t, "y")
	course.Config.Domain = nil
	_, err = s.InitCourse(ctx, course, graph.Thresholds{})
	assert.ErrorIs(t, err, ErrInvalidCourse)

	for _, name := range []string{"", "..", "../escape", "a/b", ".hidden"} {
		_, err = s.InitCourse(ctx, sampleCourse(t, name), graph.Thresholds{})
		assert.ErrorIs(t, err, ErrInvalidCourseName, name)
	}
}

func TestLoadCourseCorruptGraph(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, err := s.InitCourse(ctx, sampleCourse(t, "go"), graph.DefaultThresholds())
	require.NoError(t, err)

	path := filepath.Join(s.Root(), coursesDir, "go", graphFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version":1,"concepts":[`), 0o644))

	_, err = s.LoadCourse(ctx, "go")
	var cse *CorruptStateError
	require.ErrorAs(t, err, &cse)
	assert.Equal(t, path, cse.Path)

	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version":7,"concepts":{}}`), 0o644))
	_, err = s.LoadCourse(ctx, "go")
	assert.ErrorIs(t, err, ErrSchemaVersion)
	assert.ErrorAs(t, err, &cse)
}

func TestListCourses(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	names, err := s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, name := range []string{"spanish", "algebra", "go"} {
		_, err := s.InitCourse(ctx, sampleCourse(t, name), graph.DefaultThresholds())
		require.NoError(t, err)
	}
	names, err = s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"algebra", "go", "spanish"}, names)
}

func practicedProgress(t *testing.T, course models.Course) models.Progress {
	t.Helper()
	tr, err := mastery.NewTracker(nil, 0)
	require.NoError(t, err)

	p := models.NewProgress(course.Name, course.Graph)
	outcomes := []models.Outcome{
		{ConceptID: "values", Correct: true, Rating: 3},
		{ConceptID: "values", Correct: false, Rating: 1, ErrorKind: models.ErrorMisconception, ErrorDescription: "mutates copies"},
		{ConceptID: "functions", Correct: true, Rating: 4},
	}
	for i, o := range outcomes {
		p, _, err = tr.Apply(course.Graph, p, o, t0.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}
	return p
}

func TestProgressRoundTrip(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	course := sampleCourse(t, "go")

	initial, err := s.InitProgress(ctx, "go", course.Graph)
	require.NoError(t, err)
	loaded, err := s.LoadProgress(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, initial, loaded)
	for id, cp := range loaded.Concepts {
		assert.Greater(t, cp.MasteryScore, 0.0, id)
		assert.InDelta(t, mastery.ComputeMasteryScore(cp), cp.MasteryScore, 1e-12, id)
	}

	p := practicedProgress(t, course)
	require.NoError(t, s.SaveProgress(ctx, "go", p))
	loaded, err = s.LoadProgress(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	path := filepath.Join(s.Root(), learnerDir, "go", progressFile)
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveProgress(ctx, "go", loaded))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "save(load(p)) rewrites the same bytes")
}

func TestInitProgressKeepsExisting(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	course := sampleCourse(t, "go")

	_, err := s.InitProgress(ctx, "go", course.Graph)
	require.NoError(t, err)
	p := practicedProgress(t, course)
	require.NoError(t, s.SaveProgress(ctx, "go", p))

	again, err := s.InitProgress(ctx, "go", course.Graph)
	require.NoError(t, err)
	assert.Equal(t, p, again)

	reset, err := s.ResetProgress(ctx, "go", course.Graph)
	require.NoError(t, err)
	assert.Equal(t, 3, reset.Stats.ConceptsNotStarted)
	loaded, err := s.LoadProgress(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, reset, loaded)
}

func TestSaveProgressRefusesStaleMastery(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	course := sampleCourse(t, "go")
	_, err := s.InitProgress(ctx, "go", course.Graph)
	require.NoError(t, err)

	p := practicedProgress(t, course)
	cp := p.Concepts["values"]
	cp.CorrectCount = 2
	cp.PracticeCount = 2
	p.Concepts["values"] = cp

	err = s.SaveProgress(ctx, "go", p)
	assert.ErrorIs(t, err, ErrStaleMastery)

	loaded, err := s.LoadProgress(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotStarted, loaded.Concepts["values"].Status, "nothing was written")

	zeroed := models.NewProgress("go", course.Graph)
	cp = zeroed.Concepts["functions"]
	cp.MasteryScore = 0
	zeroed.Concepts["functions"] = cp
	assert.ErrorIs(t, s.SaveProgress(ctx, "go", zeroed), ErrStaleMastery, "an unpracticed concept still scores its bloom term")

	require.NoError(t, s.SaveProgress(ctx, "go", mastery.RefreshScores(p)))
}

func TestSaveProgressRejects(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	course := sampleCourse(t, "go")
	p := models.NewProgress("go", course.Graph)

	assert.ErrorIs(t, s.SaveProgress(ctx, "python", p), ErrCourseMismatch)

	p.SchemaVersion = 2
	assert.ErrorIs(t, s.SaveProgress(ctx, "go", p), ErrSchemaVersion)

	p = models.NewProgress("go", course.Graph)
	cp := p.Concepts["values"]
	cp.RecentResults = make([]bool, 11)
	p.Concepts["values"] = cp
	assert.ErrorIs(t, s.SaveProgress(ctx, "go", p), ErrInvalidProgress)
}

func TestSaveProgressRecountsStats(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	course := sampleCourse(t, "go")
	p := practicedProgress(t, course)
	p.Stats.ConceptsMastered = 9

	require.NoError(t, s.SaveProgress(ctx, "go", p))
	loaded, err := s.LoadProgress(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Stats.ConceptsMastered)
	assert.Equal(t, 2, loaded.Stats.ConceptsLearning)
	assert.Equal(t, 1, loaded.Stats.ConceptsNotStarted)
}

func TestSaveProgressLeavesNoTempFiles(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	course := sampleCourse(t, "go")
	p := practicedProgress(t, course)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.SaveProgress(ctx, "go", p))
	}

	entries, err := os.ReadDir(filepath.Join(s.Root(), learnerDir, "go"))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), e.Name())
	}
}

func TestLoadProgressErrors(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.LoadProgress(ctx, "go")
	assert.ErrorIs(t, err, ErrProgressNotFound)

	course := sampleCourse(t, "go")
	_, err = s.InitProgress(ctx, "go", course.Graph)
	require.NoError(t, err)
	path := filepath.Join(s.Root(), learnerDir, "go", progressFile)

	cases := map[string]struct {
		body string
		is   error
	}{
		"truncated": {body: `{"schema_version":1,"course_name":"go","concepts":{`},
		"future version": {
			body: `{"schema_version":2,"course_name":"go","concepts":{}}`,
			is:   ErrSchemaVersion,
		},
		"missing version": {
			body: `{"course_name":"go","concepts":{}}`,
			is:   ErrSchemaVersion,
		},
		"correct above practice": {
			body: `{"schema_version":1,"course_name":"go","concepts":{"values":{"status":"learning","bloom_level":"remember","mastery_score":0.5,"memory_state":{"difficulty":5,"stability":2,"last_reviewed_at":null,"reps":1,"lapses":0},"practice_count":1,"correct_count":3,"recent_results":[true],"error_history":[],"last_practiced_at":null}},"stats":{}}`,
		},
		"unknown status": {
			body: `{"schema_version":1,"course_name":"go","concepts":{"values":{"status":"done","bloom_level":"remember","mastery_score":0,"memory_state":{},"practice_count":0,"correct_count":0,"recent_results":[],"error_history":[]}},"stats":{}}`,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(path, []byte(tc.body), 0o644))
			_, err := s.LoadProgress(ctx, "go")
			var cse *CorruptStateError
			require.ErrorAs(t, err, &cse)
			if tc.is != nil {
				assert.ErrorIs(t, err, tc.is)
			}
		})
	}
}

func TestAppendSessionLog(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	log, path, err := s.AppendSessionLog(ctx, "go", models.SessionLog{
		Outcomes: []models.Outcome{{ConceptID: "values", Correct: true, Rating: 3}},
	})
	require.NoError(t, err)
	_, err = uuid.Parse(log.ID)
	assert.NoError(t, err)
	assert.Equal(t, "go", log.Course)
	assert.True(t, log.EndedAt.Equal(t0))
	assert.FileExists(t, path)
	assert.True(t, strings.HasPrefix(filepath.Base(path), "20250402T083000Z-"))

	logs, err := s.LoadSessionLogs(ctx, "go")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, log, logs[0])
}

func TestFinishSession(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	course := sampleCourse(t, "go")
	p := practicedProgress(t, course)

	log := models.SessionLog{
		StartedAt: t0.Add(-24 * time.Minute),
		EndedAt:   t0.Add(30 * time.Second),
		Plan:      models.SessionPlan{Items: []models.PlanItem{{Type: models.ItemNew, ConceptID: "values"}}},
		Outcomes: []models.Outcome{
			{ConceptID: "values", Correct: true, Rating: 3},
			{ConceptID: "values", Correct: false, Rating: 1},
		},
	}
	next, err := s.FinishSession(ctx, "go", p, log)
	require.NoError(t, err)
	assert.Equal(t, 1, next.Stats.TotalSessions)
	assert.Equal(t, 25, next.Stats.TotalPracticeMinutes)
	require.NotNil(t, next.LastSession)
	assert.Equal(t, 2, next.LastSession.Items)
	assert.Equal(t, 1, next.LastSession.Correct)
	assert.Nil(t, p.LastSession, "input is not modified")

	loaded, err := s.LoadProgress(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, next, loaded)

	logs, err := s.LoadSessionLogs(ctx, "go")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, next.LastSession.ID, logs[0].ID)
}

func TestProfile(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	p, err := s.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSessionMinutes, p.Preferences.SessionMinutes)
	assert.FileExists(t, filepath.Join(s.Root(), learnerDir, profileFile))

	p.ActiveCourses = append(p.ActiveCourses, "go")
	p.Preferences.SessionMinutes = 40
	require.NoError(t, s.SaveProfile(ctx, p))

	loaded, err := s.LoadProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)
	assert.True(t, loaded.HasCourse("go"))

	p.Preferences.SessionMinutes = 0
	assert.Error(t, s.SaveProfile(ctx, p))
}

func TestCanceledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadProgress(ctx, "go")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.ErrorIs(t, s.SaveProgress(ctx, "go", models.Progress{Course: "go"}), context.Canceled)
	_, err = s.ListCourses(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
