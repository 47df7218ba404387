package spaced_repetition

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/example/tutorcore/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func TestRetrievabilityAtZeroElapsed(t *testing.T) {
	for _, s := range []float64{0.01, 0.5, 1, 10, 365} {
		assert.Equal(t, 1.0, Retrievability(s, 0), "stability %v", s)
	}
}

func TestRetrievabilityNeverReviewed(t *testing.T) {
	assert.Equal(t, 0.0, Retrievability(0, 0))
	assert.Equal(t, 0.0, Retrievability(0, 10))
}

func TestRetrievabilityNegativeElapsedClamped(t *testing.T) {
	assert.Equal(t, 1.0, Retrievability(5, -3))
}

func TestRetrievabilityStrictlyDecreasing(t *testing.T) {
	for _, s := range []float64{0.2, 1, 10, 100} {
		prev := Retrievability(s, 0)
		for days := 0.5; days <= 400; days += 0.5 {
			r := Retrievability(s, days)
			require.Less(t, r, prev, "stability %v at day %v", s, days)
			prev = r
		}
	}
}

func TestRetrievabilityConcreteScenario(t *testing.T) {
	r := Retrievability(10, 10)
	assert.InDelta(t, 1/(1+10.0/90.0), r, 1e-12)
	assert.InDelta(t, 0.9, r, 1e-12)
}

func TestRetrievabilityAt(t *testing.T) {
	reviewed := t0
	state := models.MemoryState{Difficulty: 5, Stability: 10, LastReviewedAt: &reviewed}
	assert.InDelta(t, 0.9, RetrievabilityAt(state, t0.Add(10*24*time.Hour)), 1e-9)

	// stability without a review timestamp is treated as fully forgotten
	assert.Equal(t, 0.0, RetrievabilityAt(models.MemoryState{Stability: 3}, t0))
}

func TestInitialize(t *testing.T) {
	m := DefaultModel()
	for r := Again; r <= Easy; r++ {
		d, s, err := m.Initialize(r)
		require.NoError(t, err)
		assert.Equal(t, DefaultParameters[r-1], s)
		assert.GreaterOrEqual(t, d, 1.0)
		assert.LessOrEqual(t, d, 10.0)
	}

	dAgain, _, _ := m.Initialize(Again)
	dEasy, _, _ := m.Initialize(Easy)
	assert.Greater(t, dAgain, dEasy, "a failed first recall should start harder")
}

func TestInitializeInvalidRating(t *testing.T) {
	_, _, err := DefaultModel().Initialize(Rating(0))
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestReviewConcreteScenario(t *testing.T) {
	m := DefaultModel()
	state := models.MemoryState{Difficulty: 5, Stability: 10}

	next, err := m.Review(state, Good, 10)
	require.NoError(t, err)
	assert.Greater(t, next.Stability, 10.0)
	assert.Equal(t, 1, next.Reps)
	assert.Equal(t, 0, next.Lapses)
}

func TestReviewSuccessNeverDecreasesStability(t *testing.T) {
	m := DefaultModel()
	for _, d := range []float64{1, 3.3, 5, 8, 10} {
		for _, s := range []float64{0.05, 0.4, 1, 7, 30, 400} {
			for _, elapsed := range []float64{0, 0.3, 1, 5, 40, 1000} {
				for _, r := range []Rating{Hard, Good, Easy} {
					next, err := m.Review(models.MemoryState{Difficulty: d, Stability: s}, r, elapsed)
					require.NoError(t, err)
					assert.GreaterOrEqual(t, next.Stability, s,
						"d=%v s=%v t=%v rating=%v", d, s, elapsed, r)
					assert.GreaterOrEqual(t, next.Difficulty, 1.0)
					assert.LessOrEqual(t, next.Difficulty, 10.0)
				}
			}
		}
	}
}

func TestReviewLapseShrinksStability(t *testing.T) {
	m := DefaultModel()
	for _, d := range []float64{1, 3.3, 5, 8, 10} {
		for _, s := range []float64{0.05, 0.4, 1, 7, 30, 400} {
			for _, elapsed := range []float64{0, 0.3, 1, 5, 40, 1000} {
				state := models.MemoryState{Difficulty: d, Stability: s}
				next, err := m.Review(state, Again, elapsed)
				require.NoError(t, err)
				assert.Less(t, next.Stability, s, "d=%v s=%v t=%v", d, s, elapsed)
				assert.GreaterOrEqual(t, next.Stability, 0.0)
				assert.Equal(t, 1, next.Lapses)
			}
		}
	}
}

func TestReviewLapseRaisesDifficulty(t *testing.T) {
	m := DefaultModel()
	next, err := m.Review(models.MemoryState{Difficulty: 5, Stability: 10}, Again, 10)
	require.NoError(t, err)
	assert.Greater(t, next.Difficulty, 5.0)

	capped, err := m.Review(models.MemoryState{Difficulty: 10, Stability: 10}, Again, 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, capped.Difficulty)
}

func TestReviewDifficultyFollowsRating(t *testing.T) {
	m := DefaultModel()
	state := models.MemoryState{Difficulty: 5, Stability: 10}
	hard, _ := m.Review(state, Hard, 10)
	easy, _ := m.Review(state, Easy, 10)
	assert.Greater(t, hard.Difficulty, easy.Difficulty)
	assert.Less(t, easy.Difficulty, 5.0)
}

func TestReviewInvalidRatingLeavesStateUnchanged(t *testing.T) {
	m := DefaultModel()
	reviewed := t0
	state := models.MemoryState{Difficulty: 4, Stability: 12, LastReviewedAt: &reviewed, Reps: 3}

	for _, r := range []Rating{0, 5, -1} {
		next, err := m.Review(state, r, 4)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidRating))
		assert.Equal(t, state, next)
	}
}

func TestReviewFirstReviewInitializes(t *testing.T) {
	m := DefaultModel()
	next, err := m.Review(models.MemoryState{}, Good, 0)
	require.NoError(t, err)
	d, s, _ := m.Initialize(Good)
	assert.Equal(t, d, next.Difficulty)
	assert.Equal(t, s, next.Stability)
	assert.Equal(t, 1, next.Reps)
}

func TestReviewAtStampsTimestamp(t *testing.T) {
	m := DefaultModel()
	first, err := m.ReviewAt(models.MemoryState{}, Good, t0)
	require.NoError(t, err)
	require.NotNil(t, first.LastReviewedAt)
	assert.True(t, first.LastReviewedAt.Equal(t0))

	later := t0.Add(5 * 24 * time.Hour)
	second, err := m.ReviewAt(first, Good, later)
	require.NoError(t, err)
	assert.True(t, second.LastReviewedAt.Equal(later))
	assert.Greater(t, second.Stability, first.Stability)
	assert.Equal(t, 2, second.Reps)
}

func TestScheduleNextReview(t *testing.T) {
	days, err := ScheduleNextReview(10, 0.9)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, days, 1e-9)
	assert.InDelta(t, 0.9, Retrievability(10, days), 1e-12)

	zero, err := ScheduleNextReview(0, 0.9)
	require.NoError(t, err)
	assert.Equal(t, 0.0, zero)
}

func TestScheduleNextReviewMonotone(t *testing.T) {
	prev := -1.0
	for s := 0.1; s < 200; s *= 1.7 {
		days, err := ScheduleNextReview(s, DefaultDesiredRetention)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, days, 0.0)
		assert.Greater(t, days, prev)
		prev = days
	}
}

func TestScheduleNextReviewInvalidRetention(t *testing.T) {
	for _, r := range []float64{0, 1, -0.2, 1.5} {
		_, err := ScheduleNextReview(10, r)
		assert.ErrorIs(t, err, ErrInvalidRetention, "retention %v", r)
	}
}

func TestNextReviewAt(t *testing.T) {
	_, ok, err := NextReviewAt(models.MemoryState{}, 0.9)
	require.NoError(t, err)
	assert.False(t, ok)

	reviewed := t0
	due, ok, err := NextReviewAt(models.MemoryState{Stability: 2, LastReviewedAt: &reviewed}, 0.9)
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, t0.Add(48*time.Hour), due, time.Second)
}

func TestNewModel(t *testing.T) {
	m, err := NewModel(Parameters{})
	require.NoError(t, err)
	assert.Equal(t, DefaultParameters, m.Parameters())

	bad := DefaultParameters
	bad[4] = 42
	_, err = NewModel(bad)
	assert.ErrorIs(t, err, ErrInvalidParameters)
}

func TestParseRating(t *testing.T) {
	r, err := ParseRating(3)
	require.NoError(t, err)
	assert.Equal(t, Good, r)
	assert.True(t, r.IsSuccess())
	assert.Equal(t, "good", r.String())

	_, err = ParseRating(7)
	assert.ErrorIs(t, err, ErrInvalidRating)
	assert.Equal(t, "Rating(7)", Rating(7).String())
	assert.False(t, Again.IsSuccess())
}

func TestDefaultParametersWithinBounds(t *testing.T) {
	require.NoError(t, ValidateParameters(DefaultParameters))
	assert.False(t, math.IsNaN(DefaultModel().initDifficulty(Easy)))
}
