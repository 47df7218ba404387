package mastery

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/tutorcore/internal/spaced_repetition"
	"github.com/example/tutorcore/pkg/models"
)

var (
	ErrConceptNotFound  = errors.New("mastery: concept not found in graph")
	ErrInvalidErrorKind = errors.New("mastery: invalid error kind")
)

// UpdateResult describes what a single outcome did to a concept
type UpdateResult struct {
	ConceptID               string
	PreviousStatus          models.ConceptStatus
	Status                  models.ConceptStatus
	BloomLevel              models.BloomLevel
	BloomAdvanced           bool
	MasteryScore            float64
	Retrievability          float64 // before the review
	NextReviewDays          float64
	Remediate               bool
	PersistentMisconception bool
	Adjustment              Adjustment
}

// Tracker applies practice outcomes to progress records
type Tracker struct {
	model            *spaced_repetition.Model
	desiredRetention float64
}

// NewTracker creates a tracker. A nil model selects the default weights and a
// zero retention selects 0.9.
func NewTracker(model *spaced_repetition.Model, desiredRetention float64) (*Tracker, error) {
	if model == nil {
		model = spaced_repetition.DefaultModel()
	}
	if desiredRetention == 0 {
		desiredRetention = spaced_repetition.DefaultDesiredRetention
	}
	if desiredRetention <= 0 || desiredRetention >= 1 {
		return nil, fmt.Errorf("%w: %f", spaced_repetition.ErrInvalidRetention, desiredRetention)
	}
	return &Tracker{model: model, desiredRetention: desiredRetention}, nil
}

// Apply is the only way an outcome reaches a progress record. It returns a
// new record and leaves p untouched. The mastery score of the concept is
// always recomputed, and the status machine is advanced:
//
//	not_started -> learning   first practice
//	learning    -> mastered   IsMastered holds
//	mastered    -> learning   score falls below RelapseScore
//
// Advancing a Bloom level empties RecentResults, so the new level is judged
// only on attempts made at it. Until three of those exist, ShouldAdvance and
// ShouldRemediate report false; PracticeCount and CorrectCount are kept.
//
// On error p is returned unchanged.
func (t *Tracker) Apply(g *models.Graph, p models.Progress, o models.Outcome, now time.Time) (models.Progress, UpdateResult, error) {
	c, ok := g.Concept(o.ConceptID)
	if !ok {
		return p, UpdateResult{}, fmt.Errorf("%w: %q", ErrConceptNotFound, o.ConceptID)
	}
	rating, err := spaced_repetition.ParseRating(o.Rating)
	if err != nil {
		return p, UpdateResult{}, err
	}
	if o.ErrorKind != "" && !o.ErrorKind.IsValid() {
		return p, UpdateResult{}, fmt.Errorf("%w: %q", ErrInvalidErrorKind, o.ErrorKind)
	}

	cp := p.Concept(o.ConceptID).Clone()
	res := UpdateResult{
		ConceptID:      o.ConceptID,
		PreviousStatus: cp.Status,
		Retrievability: spaced_repetition.RetrievabilityAt(cp.MemoryState, now),
	}

	memory, err := t.model.ReviewAt(cp.MemoryState, rating, now)
	if err != nil {
		return p, UpdateResult{}, err
	}
	cp.MemoryState = memory

	cp.PracticeCount++
	if o.Correct {
		cp.CorrectCount++
	}
	cp.PushResult(o.Correct)
	practiced := now
	cp.LastPracticedAt = &practiced

	if o.ErrorKind != "" {
		cp, _ = RecordError(cp, o.ErrorKind, o.ErrorDescription, now)
	}

	if cp.Status == models.StatusNotStarted {
		cp.Status = models.StatusLearning
	}

	// the window restarts at each new level
	if cp.BloomLevel < c.BloomTarget && ShouldAdvance(cp) {
		if next, ok := NextBloomLevel(cp.BloomLevel); ok {
			cp.BloomLevel = next
			cp.RecentResults = []bool{}
			res.BloomAdvanced = true
		}
	}

	cp.MasteryScore = ComputeMasteryScore(cp)

	switch cp.Status {
	case models.StatusLearning:
		if IsMastered(cp, c.BloomTarget) {
			cp.Status = models.StatusMastered
		}
	case models.StatusMastered:
		if cp.MasteryScore < RelapseScore {
			cp.Status = models.StatusLearning
		}
	}

	days, err := spaced_repetition.ScheduleNextReview(cp.MemoryState.Stability, t.desiredRetention)
	if err != nil {
		return p, UpdateResult{}, err
	}

	next := p.Clone()
	if next.Concepts == nil {
		next.Concepts = make(map[string]models.ConceptProgress)
	}
	next.Concepts[o.ConceptID] = cp
	next.Stats = next.Recount()

	res.Status = cp.Status
	res.BloomLevel = cp.BloomLevel
	res.MasteryScore = cp.MasteryScore
	res.NextReviewDays = days
	res.Remediate = ShouldRemediate(cp)
	res.PersistentMisconception = HasPersistentMisconception(cp)
	res.Adjustment = DifficultyAdjustment(cp)
	return next, res, nil
}

// ApplyAll folds outcomes in order, stopping at the first error. The
// returned progress holds every outcome before the failing one.
func (t *Tracker) ApplyAll(g *models.Graph, p models.Progress, outcomes []models.Outcome, now time.Time) (models.Progress, []UpdateResult, error) {
	results := make([]UpdateResult, 0, len(outcomes))
	for i, o := range outcomes {
		next, res, err := t.Apply(g, p, o, now)
		if err != nil {
			return p, results, fmt.Errorf("outcome %d: %w", i, err)
		}
		p = next
		results = append(results, res)
	}
	return p, results, nil
}

// RefreshScores recomputes every stored mastery score. Use it on records
// written by older tools before saving them.
func RefreshScores(p models.Progress) models.Progress {
	next := p.Clone()
	for id, cp := range next.Concepts {
		cp.MasteryScore = ComputeMasteryScore(cp)
		next.Concepts[id] = cp
	}
	return next
}
