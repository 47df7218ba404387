package graph

import (
	"fmt"
	"math"

	"github.com/example/tutorcore/pkg/models"
)

// ValidateGraph checks the prerequisite relation of g and returns every
// problem found: dangling references, cycles, orphans, repeated
// prerequisites and invalid fields. An empty result means the graph is a
// valid DAG. g is not modified. Duplicate concept ids never reach a Graph;
// NewGraph and decoding reject them with models.ErrDuplicateConcept.
func ValidateGraph(g *models.Graph) []error {
	var errs []error
	errs = append(errs, validateFields(g)...)
	errs = append(errs, validateReferences(g)...)

	if _, unplaced := topologicalSort(g); len(unplaced) > 0 {
		errs = append(errs, &ValidationError{
			Kind:     KindCycle,
			Concepts: unplaced,
			Detail:   "prerequisites form a cycle; these concepts cannot be ordered",
		})
	}

	errs = append(errs, validateOrphans(g)...)
	return errs
}

func validateFields(g *models.Graph) []error {
	var errs []error
	for _, c := range g.Concepts() {
		if !c.BloomTarget.IsValid() {
			errs = append(errs, &ValidationError{
				Kind:     KindInvalidField,
				Concepts: []string{c.ID},
				Detail:   fmt.Sprintf("bloom_target %d is not a bloom level", int(c.BloomTarget)),
			})
		}
		seen := make(map[string]bool, len(c.Prerequisites))
		for _, pre := range c.Prerequisites {
			if seen[pre] {
				errs = append(errs, &ValidationError{
					Kind:     KindDuplicate,
					Concepts: []string{c.ID, pre},
					Detail:   fmt.Sprintf("prerequisite %q is listed more than once", pre),
				})
			}
			seen[pre] = true
		}
		if math.IsNaN(c.Difficulty) || c.Difficulty < 0 || c.Difficulty > 1 {
			errs = append(errs, &ValidationError{
				Kind:     KindInvalidField,
				Concepts: []string{c.ID},
				Detail:   fmt.Sprintf("difficulty %v outside [0, 1]", c.Difficulty),
			})
		}
	}
	return errs
}

// validateReferences checks that all prerequisites exist
func validateReferences(g *models.Graph) []error {
	var errs []error
	for _, c := range g.Concepts() {
		for _, pre := range c.Prerequisites {
			if !g.Has(pre) {
				errs = append(errs, &ValidationError{
					Kind:     KindDangling,
					Concepts: []string{c.ID, pre},
					Detail:   fmt.Sprintf("concept %q has prerequisite %q which does not exist", c.ID, pre),
				})
			}
		}
	}
	return errs
}

// validateOrphans flags concepts with no prerequisites and no dependents.
// A single-concept graph is valid on its own.
func validateOrphans(g *models.Graph) []error {
	if g.Len() < 2 {
		return nil
	}
	dependedOn := make(map[string]bool)
	for _, c := range g.Concepts() {
		for _, pre := range c.Prerequisites {
			dependedOn[pre] = true
		}
	}

	var errs []error
	for _, c := range g.Concepts() {
		if len(c.Prerequisites) == 0 && !dependedOn[c.ID] {
			errs = append(errs, &ValidationError{
				Kind:     KindOrphan,
				Concepts: []string{c.ID},
				Detail:   "concept is not connected to any other concept",
			})
		}
	}
	return errs
}

// TopologicalOrder returns the concepts with prerequisites first, or a
// cycle error when no such order exists. Dangling prerequisites are ignored.
func TopologicalOrder(g *models.Graph) ([]string, error) {
	order, unplaced := topologicalSort(g)
	if len(unplaced) > 0 {
		return nil, &ValidationError{
			Kind:     KindCycle,
			Concepts: unplaced,
			Detail:   "prerequisites form a cycle; these concepts cannot be ordered",
		}
	}
	return order, nil
}

// topologicalSort runs Kahn's algorithm seeded in declaration order.
// Concepts it cannot place sit on, or behind, a cycle.
func topologicalSort(g *models.Graph) (order, unplaced []string) {
	inDegree := make(map[string]int, g.Len())
	dependents := make(map[string][]string, g.Len())
	for _, c := range g.Concepts() {
		inDegree[c.ID] += 0
		for _, pre := range c.Prerequisites {
			if !g.Has(pre) {
				continue
			}
			inDegree[c.ID]++
			dependents[pre] = append(dependents[pre], c.ID)
		}
	}

	queue := make([]string, 0, g.Len())
	for _, id := range g.IDs() {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order = make([]string, 0, g.Len())
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, dep := range dependents[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(order) == g.Len() {
		return order, nil
	}
	placed := make(map[string]bool, len(order))
	for _, id := range order {
		placed[id] = true
	}
	for _, id := range g.IDs() {
		if !placed[id] {
			unplaced = append(unplaced, id)
		}
	}
	return order, unplaced
}
