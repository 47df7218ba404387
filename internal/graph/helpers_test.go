package graph

import (
	"testing"

	"github.com/example/tutorcore/pkg/models"
	"github.com/stretchr/testify/require"
)

func concept(id string, difficulty float64, prereqs ...string) models.Concept {
	return models.Concept{
		ID:            id,
		Prerequisites: prereqs,
		BloomTarget:   models.BloomApply,
		Difficulty:    difficulty,
	}
}

func mustGraph(t *testing.T, concepts ...models.Concept) *models.Graph {
	t.Helper()
	g, err := models.NewGraph(concepts...)
	require.NoError(t, err)
	return g
}

func progressWith(statuses map[string]models.ConceptStatus) models.Progress {
	p := models.Progress{Course: "test", Concepts: map[string]models.ConceptProgress{}}
	for id, s := range statuses {
		cp := models.NewConceptProgress()
		cp.Status = s
		p.Concepts[id] = cp
	}
	return p
}

func kinds(errs []error) []Kind {
	out := make([]Kind, 0, len(errs))
	for _, err := range errs {
		if ve, ok := err.(*ValidationError); ok {
			out = append(out, ve.Kind)
		}
	}
	return out
}
