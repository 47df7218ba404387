package planner

import (
	"github.com/example/tutorcore/internal/graph"
	"github.com/example/tutorcore/pkg/models"
)

// SuggestPivots returns up to n frontier concepts to switch to when the
// learner is stuck on current, easiest first. current and everything that
// transitively depends on it are excluded. n <= 0 means no limit.
func SuggestPivots(g *models.Graph, progress models.Progress, current string, n int) []string {
	excluded := map[string]bool{current: true}
	for _, id := range graph.Dependents(g, current) {
		excluded[id] = true
	}

	var out []string
	for _, id := range graph.GetFrontier(g, progress) {
		if excluded[id] {
			continue
		}
		out = append(out, id)
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// SuggestPivot returns the easiest alternative to current, or false when
// the frontier has none.
func SuggestPivot(g *models.Graph, progress models.Progress, current string) (string, bool) {
	alts := SuggestPivots(g, progress, current, 1)
	if len(alts) == 0 {
		return "", false
	}
	return alts[0], true
}
