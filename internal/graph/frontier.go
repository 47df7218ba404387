package graph

import (
	"sort"

	"github.com/example/tutorcore/pkg/models"
)

// GetFrontier returns the concepts whose prerequisites are all mastered and
// which are not mastered themselves, easiest first and then in declaration
// order. A prerequisite missing from the graph is never mastered.
func GetFrontier(g *models.Graph, p models.Progress) []string {
	var frontier []models.Concept
	for _, c := range g.Concepts() {
		if p.StatusOf(c.ID) == models.StatusMastered {
			continue
		}
		if prerequisitesMastered(g, p, c) {
			frontier = append(frontier, c)
		}
	}

	// Concepts() is in declaration order, so a stable sort keeps it for ties.
	sort.SliceStable(frontier, func(i, j int) bool {
		return frontier[i].Difficulty < frontier[j].Difficulty
	})

	ids := make([]string, len(frontier))
	for i, c := range frontier {
		ids[i] = c.ID
	}
	return ids
}

func prerequisitesMastered(g *models.Graph, p models.Progress, c models.Concept) bool {
	for _, pre := range c.Prerequisites {
		if !g.Has(pre) || p.StatusOf(pre) != models.StatusMastered {
			return false
		}
	}
	return true
}
