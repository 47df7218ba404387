package models

import (
	"slices"
	"time"
)

// DefaultSessionMinutes is the session length used when nothing else is set
const DefaultSessionMinutes = 25

// LearningPreferences are the learner's standing choices
type LearningPreferences struct {
	SessionMinutes   int    `json:"session_duration_minutes" validate:"gte=1,lte=240"`
	ExplanationStyle string `json:"explanation_style" validate:"required"`
}

// Profile is the learner-wide record shared by all courses
type Profile struct {
	CreatedAt     time.Time           `json:"created"`
	Preferences   LearningPreferences `json:"learning_preferences"`
	ActiveCourses []string            `json:"active_courses"`
}

// NewProfile returns the default profile
func NewProfile(now time.Time) Profile {
	return Profile{
		CreatedAt: now.UTC(),
		Preferences: LearningPreferences{
			SessionMinutes:   DefaultSessionMinutes,
			ExplanationStyle: "examples_first",
		},
		ActiveCourses: []string{},
	}
}

// HasCourse reports whether name is an active course
func (p Profile) HasCourse(name string) bool {
	return slices.Contains(p.ActiveCourses, name)
}
