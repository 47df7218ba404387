package graph

import (
	"fmt"

	"github.com/example/tutorcore/pkg/models"
)

// Thresholds tune the pedagogy lint
type Thresholds struct {
	MaxPrerequisites int     `yaml:"max_prerequisites"`
	MaxChainDepth    int     `yaml:"max_chain_depth"`
	RecallDifficulty float64 `yaml:"recall_difficulty"` // above this, a remember target is suspicious
}

// DefaultThresholds returns the default lint limits
func DefaultThresholds() Thresholds {
	return Thresholds{
		MaxPrerequisites: 5,
		MaxChainDepth:    10,
		RecallDifficulty: 0.7,
	}
}

// ValidateGraphPedagogy returns advisory warnings about a graph that may be
// structurally valid but hard to teach. Warnings never block a save.
func ValidateGraphPedagogy(g *models.Graph, th Thresholds) []Warning {
	def := DefaultThresholds()
	if th.MaxPrerequisites <= 0 {
		th.MaxPrerequisites = def.MaxPrerequisites
	}
	if th.MaxChainDepth <= 0 {
		th.MaxChainDepth = def.MaxChainDepth
	}
	if th.RecallDifficulty <= 0 {
		th.RecallDifficulty = def.RecallDifficulty
	}

	var warnings []Warning
	depth := depths(g)
	for _, c := range g.Concepts() {
		if n := len(c.Prerequisites); n > th.MaxPrerequisites {
			warnings = append(warnings, Warning{
				ConceptID: c.ID,
				Message:   fmt.Sprintf("has %d prerequisites, consider whether all are necessary", n),
			})
		}
		if d := depth[c.ID]; d > th.MaxChainDepth {
			warnings = append(warnings, Warning{
				ConceptID: c.ID,
				Message:   fmt.Sprintf("prerequisite chain is %d levels deep, consider teaching branches in parallel", d),
			})
		}
		if c.BloomTarget == models.BloomRemember && c.Difficulty > th.RecallDifficulty {
			warnings = append(warnings, Warning{
				ConceptID: c.ID,
				Message:   fmt.Sprintf("difficulty %.2f but targets remember, should it target apply or analyze?", c.Difficulty),
			})
		}
	}
	return warnings
}
