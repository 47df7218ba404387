package models

import (
	"fmt"
	"time"
)

// ProgressSchemaVersion is the progress file version this engine reads
const ProgressSchemaVersion = 1

// RecentResultsCapacity bounds ConceptProgress.RecentResults
const RecentResultsCapacity = 10

// ConceptStatus is the per-concept learning state
type ConceptStatus string

const (
	StatusNotStarted ConceptStatus = "not_started"
	StatusLearning   ConceptStatus = "learning"
	StatusMastered   ConceptStatus = "mastered"
)

// IsValid reports whether s is a known status
func (s ConceptStatus) IsValid() bool {
	switch s {
	case StatusNotStarted, StatusLearning, StatusMastered:
		return true
	}
	return false
}

// ErrorKind is the assessor's classification of a wrong answer
type ErrorKind string

const (
	ErrorSlip          ErrorKind = "slip"
	ErrorMisconception ErrorKind = "misconception"
	ErrorGap           ErrorKind = "gap"
)

// IsValid reports whether k is a known error kind
func (k ErrorKind) IsValid() bool {
	switch k {
	case ErrorSlip, ErrorMisconception, ErrorGap:
		return true
	}
	return false
}

// MemoryState is the DSR memory model state of one concept
type MemoryState struct {
	Difficulty     float64    `json:"difficulty" validate:"gte=0,lte=10"`
	Stability      float64    `json:"stability" validate:"gte=0"` // days
	LastReviewedAt *time.Time `json:"last_reviewed_at"`           // nil before first review
	Reps           int        `json:"reps" validate:"gte=0"`
	Lapses         int        `json:"lapses" validate:"gte=0"`
}

// ErrorEntry is one recorded mistake
type ErrorEntry struct {
	Kind        ErrorKind `json:"kind" validate:"oneof=slip misconception gap"`
	Description string    `json:"description"`
	At          time.Time `json:"timestamp"`
}

// ConceptProgress tracks a learner's progress with a single concept
type ConceptProgress struct {
	Status          ConceptStatus `json:"status" validate:"oneof=not_started learning mastered"`
	BloomLevel      BloomLevel    `json:"bloom_level" validate:"gte=1,lte=6"`
	MasteryScore    float64       `json:"mastery_score" validate:"gte=0,lte=1"`
	MemoryState     MemoryState   `json:"memory_state"`
	PracticeCount   int           `json:"practice_count" validate:"gte=0"`
	CorrectCount    int           `json:"correct_count" validate:"gte=0,ltefield=PracticeCount"`
	RecentResults   []bool        `json:"recent_results" validate:"max=10"`
	ErrorHistory    []ErrorEntry  `json:"error_history" validate:"dive"`
	LastPracticedAt *time.Time    `json:"last_practiced_at"`
}

// NewConceptProgress returns the untouched state of a concept, its mastery
// score already computed
func NewConceptProgress() ConceptProgress {
	cp := ConceptProgress{
		Status:        StatusNotStarted,
		BloomLevel:    BloomRemember,
		RecentResults: []bool{},
		ErrorHistory:  []ErrorEntry{},
	}
	cp.MasteryScore = ComputeMasteryScore(cp)
	return cp
}

// Clone returns a deep copy
func (cp ConceptProgress) Clone() ConceptProgress {
	out := cp
	if cp.RecentResults != nil {
		out.RecentResults = append([]bool(nil), cp.RecentResults...)
		if out.RecentResults == nil {
			out.RecentResults = []bool{}
		}
	}
	if cp.ErrorHistory != nil {
		out.ErrorHistory = append([]ErrorEntry(nil), cp.ErrorHistory...)
		if out.ErrorHistory == nil {
			out.ErrorHistory = []ErrorEntry{}
		}
	}
	if cp.MemoryState.LastReviewedAt != nil {
		t := *cp.MemoryState.LastReviewedAt
		out.MemoryState.LastReviewedAt = &t
	}
	if cp.LastPracticedAt != nil {
		t := *cp.LastPracticedAt
		out.LastPracticedAt = &t
	}
	return out
}

// PushResult appends r to RecentResults, dropping the oldest entries past capacity
func (cp *ConceptProgress) PushResult(r bool) {
	cp.RecentResults = append(cp.RecentResults, r)
	if n := len(cp.RecentResults); n > RecentResultsCapacity {
		cp.RecentResults = append([]bool{}, cp.RecentResults[n-RecentResultsCapacity:]...)
	}
}

// ProgressStats are learner-level counters derived from the concepts
type ProgressStats struct {
	TotalSessions        int `json:"total_sessions" validate:"gte=0"`
	TotalPracticeMinutes int `json:"total_practice_time_minutes" validate:"gte=0"`
	ConceptsMastered     int `json:"concepts_mastered" validate:"gte=0"`
	ConceptsLearning     int `json:"concepts_learning" validate:"gte=0"`
	ConceptsNotStarted   int `json:"concepts_not_started" validate:"gte=0"`
}

// SessionSummary is what Progress remembers about the latest session
type SessionSummary struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Items     int       `json:"items"`
	Correct   int       `json:"correct"`
}

// Progress is a learner's mutable record for one course
type Progress struct {
	SchemaVersion int                        `json:"schema_version"`
	Course        string                     `json:"course_name" validate:"required"`
	Concepts      map[string]ConceptProgress `json:"concepts" validate:"required,dive"`
	Stats         ProgressStats              `json:"stats"`
	LastSession   *SessionSummary            `json:"last_session"`
}

// NewProgress creates a record with every concept of g not started
func NewProgress(course string, g *Graph) Progress {
	p := Progress{
		SchemaVersion: ProgressSchemaVersion,
		Course:        course,
		Concepts:      make(map[string]ConceptProgress, g.Len()),
	}
	for _, id := range g.IDs() {
		p.Concepts[id] = NewConceptProgress()
	}
	p.Stats = p.Recount()
	return p
}

// Concept returns the concept's progress, or the untouched state when absent
func (p Progress) Concept(id string) ConceptProgress {
	if cp, ok := p.Concepts[id]; ok {
		return cp
	}
	return NewConceptProgress()
}

// StatusOf returns the concept's status, not_started when absent
func (p Progress) StatusOf(id string) ConceptStatus {
	if cp, ok := p.Concepts[id]; ok {
		return cp.Status
	}
	return StatusNotStarted
}

// Clone returns a deep copy
func (p Progress) Clone() Progress {
	out := p
	out.Concepts = make(map[string]ConceptProgress, len(p.Concepts))
	for id, cp := range p.Concepts {
		out.Concepts[id] = cp.Clone()
	}
	if p.LastSession != nil {
		s := *p.LastSession
		out.LastSession = &s
	}
	return out
}

// Recount derives the status counters, keeping the session counters
func (p Progress) Recount() ProgressStats {
	stats := p.Stats
	stats.ConceptsMastered, stats.ConceptsLearning, stats.ConceptsNotStarted = 0, 0, 0
	for _, cp := range p.Concepts {
		switch cp.Status {
		case StatusMastered:
			stats.ConceptsMastered++
		case StatusLearning:
			stats.ConceptsLearning++
		default:
			stats.ConceptsNotStarted++
		}
	}
	return stats
}

func (p Progress) String() string {
	return fmt.Sprintf("Progress(%s: %d mastered, %d learning, %d not started)",
		p.Course, p.Stats.ConceptsMastered, p.Stats.ConceptsLearning, p.Stats.ConceptsNotStarted)
}
