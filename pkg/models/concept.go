package models

import (
	"encoding/json"
	"fmt"
)

// Concept is a single learnable node of the knowledge graph
type Concept struct {
	ID            string         `json:"-"`
	Title         string         `json:"title,omitempty"`
	Prerequisites []string       `json:"prerequisites"`
	BloomTarget   BloomLevel     `json:"bloom_target"`
	Difficulty    float64        `json:"difficulty"` // 0.0 - 1.0
	Unit          string         `json:"unit,omitempty"`
	Metadata      map[string]any `json:"-"` // any other keys found on the concept object
}

var conceptKeys = map[string]bool{
	"title":         true,
	"prerequisites": true,
	"bloom_target":  true,
	"difficulty":    true,
	"unit":          true,
}

// conceptFields mirrors Concept without the custom marshallers
type conceptFields struct {
	Title         string     `json:"title,omitempty"`
	Prerequisites []string   `json:"prerequisites"`
	BloomTarget   BloomLevel `json:"bloom_target"`
	Difficulty    float64    `json:"difficulty"`
	Unit          string     `json:"unit,omitempty"`
}

// UnmarshalJSON decodes the known fields and keeps the rest as Metadata.
func (c *Concept) UnmarshalJSON(data []byte) error {
	var f conceptFields
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("models: decode concept: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("models: decode concept: %w", err)
	}
	for k := range conceptKeys {
		delete(raw, k)
	}
	if len(raw) == 0 {
		raw = nil
	}

	c.Title = f.Title
	c.Prerequisites = f.Prerequisites
	c.BloomTarget = f.BloomTarget
	c.Difficulty = f.Difficulty
	c.Unit = f.Unit
	c.Metadata = raw
	return nil
}

// MarshalJSON writes Metadata keys next to the known fields.
func (c Concept) MarshalJSON() ([]byte, error) {
	prereqs := c.Prerequisites
	if prereqs == nil {
		prereqs = []string{}
	}
	known, err := json.Marshal(conceptFields{
		Title:         c.Title,
		Prerequisites: prereqs,
		BloomTarget:   c.BloomTarget,
		Difficulty:    c.Difficulty,
		Unit:          c.Unit,
	})
	if err != nil {
		return nil, err
	}
	if len(c.Metadata) == 0 {
		return known, nil
	}

	out := make(map[string]any, len(c.Metadata)+len(conceptKeys))
	for k, v := range c.Metadata {
		if !conceptKeys[k] {
			out[k] = v
		}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return json.Marshal(out)
}
