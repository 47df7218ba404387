package models

import "time"

// PlanItemType says what the tutor should do with a concept
type PlanItemType string

const (
	ItemNew    PlanItemType = "new"
	ItemReview PlanItemType = "review"
	ItemAssess PlanItemType = "assess"
)

// PlanItem is one step of a session plan
type PlanItem struct {
	Type      PlanItemType `json:"type"`
	ConceptID string       `json:"concept_id"`
}

// SessionPlan is the ordered output of the planner
type SessionPlan struct {
	Items            []PlanItem `json:"plan"`
	NewConcepts      []string   `json:"new_concepts"`
	ReviewConcepts   []string   `json:"review_concepts"`
	BudgetItems      int        `json:"budget_items"`
	EstimatedMinutes int        `json:"estimated_minutes"`
}

// SessionLog is the record written to the sessions directory after a session
type SessionLog struct {
	ID        string      `json:"id"`
	Course    string      `json:"course_name"`
	StartedAt time.Time   `json:"started_at"`
	EndedAt   time.Time   `json:"ended_at"`
	Plan      SessionPlan `json:"plan"`
	Outcomes  []Outcome   `json:"outcomes"`
}

// Summary condenses the log into what Progress keeps
func (l SessionLog) Summary() SessionSummary {
	correct := 0
	for _, o := range l.Outcomes {
		if o.Correct {
			correct++
		}
	}
	return SessionSummary{
		ID:        l.ID,
		StartedAt: l.StartedAt,
		EndedAt:   l.EndedAt,
		Items:     len(l.Outcomes),
		Correct:   correct,
	}
}
