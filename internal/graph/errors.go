package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGraph is matched by every *ValidationError
var ErrInvalidGraph = errors.New("graph: invalid knowledge graph")

// Kind classifies a structural problem
type Kind string

const (
	KindCycle        Kind = "cycle"
	KindDangling     Kind = "dangling_reference"
	KindOrphan       Kind = "orphan"
	KindDuplicate    Kind = "duplicate"
	KindInvalidField Kind = "invalid_field"
)

// ValidationError describes one structural defect of a graph.
// It is never corrected automatically.
type ValidationError struct {
	Kind     Kind
	Concepts []string
	Detail   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("graph: %s [%s]: %s", e.Kind, strings.Join(e.Concepts, ", "), e.Detail)
}

// Is lets errors.Is(err, ErrInvalidGraph) match any validation error.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidGraph
}

// Warning is advisory feedback for the course builder
type Warning struct {
	ConceptID string
	Message   string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.ConceptID, w.Message)
}
