package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Domain discriminates the course config variants
type Domain string

const (
	DomainLanguage  Domain = "language"
	DomainTechnical Domain = "technical"
	DomainInterview Domain = "interview"
)

// DomainConfig is the domain-specific part of a course config.
// Only the three variants in this package implement it.
type DomainConfig interface {
	Domain() Domain
	Validate() error
	isDomainConfig()
}

// LanguageConfig configures a natural-language course
type LanguageConfig struct {
	TargetLanguage string `json:"target_language"`
	NativeLanguage string `json:"native_language"`
	CEFRTarget     string `json:"cefr_target,omitempty"` // A1..C2
}

// TechnicalConfig configures a programming/technical course
type TechnicalConfig struct {
	Language       string   `json:"language"`
	Tooling        []string `json:"tooling,omitempty"`
	ExerciseFormat string   `json:"exercise_format,omitempty"` // e.g. "code", "worksheet"
}

// InterviewConfig configures an interview-preparation course
type InterviewConfig struct {
	Role       string `json:"role"`
	Format     string `json:"format,omitempty"` // e.g. "system_design", "behavioral"
	TargetDate string `json:"target_date,omitempty"`
}

func (LanguageConfig) Domain() Domain  { return DomainLanguage }
func (TechnicalConfig) Domain() Domain { return DomainTechnical }
func (InterviewConfig) Domain() Domain { return DomainInterview }

func (LanguageConfig) isDomainConfig()  {}
func (TechnicalConfig) isDomainConfig() {}
func (InterviewConfig) isDomainConfig() {}

var cefrLevels = map[string]bool{"A1": true, "A2": true, "B1": true, "B2": true, "C1": true, "C2": true}

func (c LanguageConfig) Validate() error {
	if c.TargetLanguage == "" {
		return fmt.Errorf("models: language course needs target_language")
	}
	if c.CEFRTarget != "" && !cefrLevels[c.CEFRTarget] {
		return fmt.Errorf("models: unknown CEFR level %q", c.CEFRTarget)
	}
	return nil
}

func (c TechnicalConfig) Validate() error {
	if c.Language == "" {
		return fmt.Errorf("models: technical course needs language")
	}
	return nil
}

func (c InterviewConfig) Validate() error {
	if c.Role == "" {
		return fmt.Errorf("models: interview course needs role")
	}
	return nil
}

// CourseConfig is the config.json of a course
type CourseConfig struct {
	Name             string
	SessionMinutes   int
	DesiredRetention float64
	Domain           DomainConfig
}

type courseConfigJSON struct {
	Name             string          `json:"name"`
	SessionMinutes   int             `json:"session_minutes,omitempty"`
	DesiredRetention float64         `json:"desired_retention,omitempty"`
	Domain           Domain          `json:"domain"`
	Settings         json.RawMessage `json:"settings"`
}

// MarshalJSON writes the variant under "settings" tagged by "domain".
func (c CourseConfig) MarshalJSON() ([]byte, error) {
	if c.Domain == nil {
		return nil, fmt.Errorf("models: course %q has no domain config", c.Name)
	}
	settings, err := json.Marshal(c.Domain)
	if err != nil {
		return nil, err
	}
	return json.Marshal(courseConfigJSON{
		Name:             c.Name,
		SessionMinutes:   c.SessionMinutes,
		DesiredRetention: c.DesiredRetention,
		Domain:           c.Domain.Domain(),
		Settings:         settings,
	})
}

// UnmarshalJSON picks the variant from "domain" and rejects settings fields
// that do not belong to it.
func (c *CourseConfig) UnmarshalJSON(data []byte) error {
	var raw courseConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("models: decode course config: %w", err)
	}

	var dc DomainConfig
	switch raw.Domain {
	case DomainLanguage:
		var v LanguageConfig
		if err := decodeStrict(raw.Settings, &v); err != nil {
			return err
		}
		dc = v
	case DomainTechnical:
		var v TechnicalConfig
		if err := decodeStrict(raw.Settings, &v); err != nil {
			return err
		}
		dc = v
	case DomainInterview:
		var v InterviewConfig
		if err := decodeStrict(raw.Settings, &v); err != nil {
			return err
		}
		dc = v
	default:
		return fmt.Errorf("models: unknown course domain %q", raw.Domain)
	}
	if err := dc.Validate(); err != nil {
		return err
	}

	*c = CourseConfig{
		Name:             raw.Name,
		SessionMinutes:   raw.SessionMinutes,
		DesiredRetention: raw.DesiredRetention,
		Domain:           dc,
	}
	return nil
}

func decodeStrict(data json.RawMessage, v any) error {
	if len(data) == 0 {
		data = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("models: decode course settings: %w", err)
	}
	return nil
}

// Unit groups concepts of the curriculum
type Unit struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Concepts []string `json:"concepts"`
}

// Curriculum is the ordered unit grouping of a course
type Curriculum struct {
	Units []Unit `json:"units"`
}

// Course is the read-only bundle a course builder produces
type Course struct {
	Name       string
	Graph      *Graph
	Curriculum Curriculum
	Config     CourseConfig
}
