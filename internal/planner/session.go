package planner

import (
	"math"
	"time"

	"github.com/example/tutorcore/internal/graph"
	"github.com/example/tutorcore/pkg/models"
)

// Budget returns the number of plan items that fit in durationMinutes.
// Any positive duration gets at least one item.
func (p *Planner) Budget(durationMinutes int) int {
	if durationMinutes <= 0 {
		return 0
	}
	return max(durationMinutes/p.cfg.MinutesPerItem, 1)
}

// NewRatio returns the share of the budget given to new material
func (p *Planner) NewRatio(frontier, reviews, budget int) float64 {
	switch {
	case reviews == 0:
		return 1.0
	case frontier == 0:
		return 0.0
	case float64(reviews) > p.cfg.BacklogThreshold*float64(budget):
		return p.cfg.BacklogNewRatio
	}
	return p.cfg.NewRatio
}

// PlanSession composes a session of at most Budget(durationMinutes) items.
//
// New items come from the frontier and review items from GetReviewItems.
// A concept that is due for review is not offered as new. Slots are split
// by NewRatio; unused slots of one pool go to the other. Items are emitted in
// runs of up to NewRunLength new items followed by one review, and any budget
// left at the end is spent assessing the concepts introduced this session.
func (p *Planner) PlanSession(g *models.Graph, progress models.Progress, durationMinutes int, now time.Time) models.SessionPlan {
	budget := p.Budget(durationMinutes)
	plan := models.SessionPlan{
		Items:          []models.PlanItem{},
		NewConcepts:    []string{},
		ReviewConcepts: []string{},
		BudgetItems:    budget,
	}
	if budget == 0 {
		return plan
	}

	reviews := p.GetReviewItems(progress, now)
	due := make(map[string]bool, len(reviews))
	for _, id := range reviews {
		due[id] = true
	}
	var frontier []string
	for _, id := range graph.GetFrontier(g, progress) {
		if !due[id] {
			frontier = append(frontier, id)
		}
	}
	if len(frontier) == 0 && len(reviews) == 0 {
		return plan
	}

	ratio := p.NewRatio(len(frontier), len(reviews), budget)
	newSlots := int(math.Round(float64(budget) * ratio))
	reviewSlots := budget - newSlots

	nNew := min(newSlots, len(frontier))
	nReview := min(reviewSlots, len(reviews))
	spare := budget - nNew - nReview
	extra := min(spare, len(frontier)-nNew)
	nNew += extra
	spare -= extra
	nReview += min(spare, len(reviews)-nReview)

	plan.NewConcepts = append(plan.NewConcepts, frontier[:nNew]...)
	plan.ReviewConcepts = append(plan.ReviewConcepts, reviews[:nReview]...)
	plan.Items = p.interleave(plan.NewConcepts, plan.ReviewConcepts)

	for _, id := range plan.NewConcepts {
		if len(plan.Items) >= budget {
			break
		}
		plan.Items = append(plan.Items, models.PlanItem{Type: models.ItemAssess, ConceptID: id})
	}

	plan.EstimatedMinutes = len(plan.Items) * p.cfg.MinutesPerItem
	return plan
}

// interleave emits runs of new items each followed by one review. When one
// pool runs out the other continues alone.
func (p *Planner) interleave(newIDs, reviewIDs []string) []models.PlanItem {
	items := make([]models.PlanItem, 0, len(newIDs)+len(reviewIDs))
	ni, ri := 0, 0
	for ni < len(newIDs) || ri < len(reviewIDs) {
		for run := 0; run < p.cfg.NewRunLength && ni < len(newIDs); run++ {
			items = append(items, models.PlanItem{Type: models.ItemNew, ConceptID: newIDs[ni]})
			ni++
		}
		if ri < len(reviewIDs) {
			items = append(items, models.PlanItem{Type: models.ItemReview, ConceptID: reviewIDs[ri]})
			ri++
		}
	}
	return items
}
