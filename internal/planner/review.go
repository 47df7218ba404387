package planner

import (
	"sort"
	"time"

	"github.com/example/tutorcore/internal/spaced_repetition"
	"github.com/example/tutorcore/pkg/models"
)

// DueReview is a concept whose recall has dropped below the desired retention
type DueReview struct {
	ConceptID      string
	Retrievability float64
	Status         models.ConceptStatus
}

// DueReviews returns the concepts due at now, most urgent first. Only
// learning or mastered concepts with a non-zero stability are considered.
// Ties on retrievability are broken by concept id.
func (p *Planner) DueReviews(progress models.Progress, now time.Time) []DueReview {
	var due []DueReview
	for id, cp := range progress.Concepts {
		if cp.Status != models.StatusLearning && cp.Status != models.StatusMastered {
			continue
		}
		if cp.MemoryState.Stability <= 0 {
			continue
		}
		r := spaced_repetition.RetrievabilityAt(cp.MemoryState, now)
		if r < p.cfg.DesiredRetention {
			due = append(due, DueReview{ConceptID: id, Retrievability: r, Status: cp.Status})
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].Retrievability != due[j].Retrievability {
			return due[i].Retrievability < due[j].Retrievability
		}
		return due[i].ConceptID < due[j].ConceptID
	})
	return due
}

// GetReviewItems returns the ids of the concepts due at now, most urgent first
func (p *Planner) GetReviewItems(progress models.Progress, now time.Time) []string {
	due := p.DueReviews(progress, now)
	ids := make([]string, len(due))
	for i, d := range due {
		ids[i] = d.ConceptID
	}
	return ids
}

// NextDue returns when the earliest concept that is not yet due will be.
// It reports false when no practiced concept is waiting.
func (p *Planner) NextDue(progress models.Progress, now time.Time) (time.Time, bool) {
	var next time.Time
	found := false
	for _, cp := range progress.Concepts {
		if cp.Status != models.StatusLearning && cp.Status != models.StatusMastered {
			continue
		}
		at, ok, err := spaced_repetition.NextReviewAt(cp.MemoryState, p.cfg.DesiredRetention)
		if err != nil || !ok || !at.After(now) {
			continue
		}
		if !found || at.Before(next) {
			next, found = at, true
		}
	}
	return next, found
}
