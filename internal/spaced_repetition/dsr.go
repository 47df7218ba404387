package spaced_repetition

import (
	"fmt"
	"math"
	"time"

	"github.com/example/tutorcore/pkg/models"
)

// DefaultDesiredRetention is the recall probability reviews are scheduled for
const DefaultDesiredRetention = 0.9

const (
	minDifficulty = 1.0
	maxDifficulty = 10.0
)

// Model implements the Difficulty-Stability-Retrievability memory model
type Model struct {
	w Parameters
}

// NewModel creates a model from the given weights.
// A zero Parameters value selects DefaultParameters.
func NewModel(p Parameters) (*Model, error) {
	if p == (Parameters{}) {
		p = DefaultParameters
	}
	if err := ValidateParameters(p); err != nil {
		return nil, err
	}
	return &Model{w: p}, nil
}

// DefaultModel returns a model with the population defaults
func DefaultModel() *Model {
	return &Model{w: DefaultParameters}
}

// Parameters returns the model weights
func (m *Model) Parameters() Parameters {
	return m.w
}

// Retrievability returns R = (1 + t/(9S))^-1.
// A stability of zero means the concept was never reviewed and yields 0.
// Negative elapsed days are treated as 0.
func Retrievability(stability, elapsedDays float64) float64 {
	if stability <= 0 {
		return 0
	}
	if elapsedDays <= 0 {
		return 1
	}
	return 1 / (1 + elapsedDays/(9*stability))
}

// ElapsedDays returns the fractional days between last and now, 0 when last is nil
func ElapsedDays(last *time.Time, now time.Time) float64 {
	if last == nil {
		return 0
	}
	d := now.Sub(*last).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}

// RetrievabilityAt returns the state's recall probability at now
func RetrievabilityAt(state models.MemoryState, now time.Time) float64 {
	if state.Stability > 0 && state.LastReviewedAt == nil {
		return 0
	}
	return Retrievability(state.Stability, ElapsedDays(state.LastReviewedAt, now))
}

// ScheduleNextReview returns the days after a review at which R falls to
// desiredRetention: t = 9S(1/r - 1).
func ScheduleNextReview(stability, desiredRetention float64) (float64, error) {
	if desiredRetention <= 0 || desiredRetention >= 1 {
		return 0, fmt.Errorf("%w: %f", ErrInvalidRetention, desiredRetention)
	}
	if stability <= 0 {
		return 0, nil
	}
	return math.Max(9*stability*(1/desiredRetention-1), 0), nil
}

// NextReviewAt returns when the state becomes due. The second result is
// false for a concept that has never been reviewed.
func NextReviewAt(state models.MemoryState, desiredRetention float64) (time.Time, bool, error) {
	if state.LastReviewedAt == nil || state.Stability <= 0 {
		return time.Time{}, false, nil
	}
	days, err := ScheduleNextReview(state.Stability, desiredRetention)
	if err != nil {
		return time.Time{}, false, err
	}
	return state.LastReviewedAt.Add(time.Duration(days * 24 * float64(time.Hour))), true, nil
}

// Initialize seeds difficulty and stability from the first rating.
// S0 = w[r-1], D0 = clamp(w[4] - e^(w[5]*(r-1)) + 1)
func (m *Model) Initialize(rating Rating) (difficulty, stability float64, err error) {
	if !rating.IsValid() {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}
	return m.initDifficulty(rating), m.w[rating-1], nil
}

// Review applies one rating after elapsedDays and returns the new state.
// Reviewing a state with zero stability initializes it. The input state is
// returned unchanged together with ErrInvalidRating for a bad rating.
// LastReviewedAt is left to the caller, see ReviewAt.
func (m *Model) Review(state models.MemoryState, rating Rating, elapsedDays float64) (models.MemoryState, error) {
	if !rating.IsValid() {
		return state, fmt.Errorf("%w: %d", ErrInvalidRating, int(rating))
	}

	next := state
	next.Reps++
	if rating == Again {
		next.Lapses++
	}

	if state.Stability <= 0 {
		next.Difficulty, next.Stability, _ = m.Initialize(rating)
		return next, nil
	}

	d := clampD(state.Difficulty)
	s := state.Stability
	r := Retrievability(s, elapsedDays)

	if rating == Again {
		next.Stability = m.lapseStability(d, s, r)
	} else {
		next.Stability = m.recallStability(d, s, r, rating)
	}
	next.Difficulty = m.nextDifficulty(d, rating)
	return next, nil
}

// ReviewAt reviews the state at now and stamps LastReviewedAt
func (m *Model) ReviewAt(state models.MemoryState, rating Rating, now time.Time) (models.MemoryState, error) {
	next, err := m.Review(state, rating, ElapsedDays(state.LastReviewedAt, now))
	if err != nil {
		return state, err
	}
	t := now
	next.LastReviewedAt = &t
	return next, nil
}

func (m *Model) initDifficulty(r Rating) float64 {
	return clampD(m.w[4] - math.Exp(m.w[5]*float64(r-1)) + 1)
}

// recallStability computes stability after Hard, Good or Easy.
// S' = S * (1 + e^w[8] * (11-D) * S^(-w[9]) * (e^(w[10]*(1-R)) - 1) * hard * easy)
func (m *Model) recallStability(d, s, r float64, rating Rating) float64 {
	hardPenalty := 1.0
	if rating == Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if rating == Easy {
		easyBonus = m.w[16]
	}
	next := s * (1 + math.Exp(m.w[8])*
		(11-d)*
		math.Pow(s, -m.w[9])*
		(math.Exp(m.w[10]*(1-r))-1)*
		hardPenalty*easyBonus)
	return math.Max(next, s)
}

// lapseStability computes stability after Again.
// S' = min(w[11] * D^(-w[12]) * ((S+1)^w[13] - 1) * e^(w[14]*(1-R)), S / e^(w[17]*w[18]))
func (m *Model) lapseStability(d, s, r float64) float64 {
	long := m.w[11] *
		math.Pow(d, -m.w[12]) *
		(math.Pow(s+1, m.w[13]) - 1) *
		math.Exp(m.w[14]*(1-r))
	ceiling := s / math.Exp(m.w[17]*m.w[18])
	return math.Max(math.Min(long, ceiling), 0)
}

// nextDifficulty moves D by -w[6]*(G-3) and reverts toward D0(easy) by w[7].
func (m *Model) nextDifficulty(d float64, rating Rating) float64 {
	shifted := d - m.w[6]*(float64(rating)-3)
	return clampD(m.w[7]*m.initDifficulty(Easy) + (1-m.w[7])*shifted)
}

func clampD(d float64) float64 {
	return math.Min(math.Max(d, minDifficulty), maxDifficulty)
}
