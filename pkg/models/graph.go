package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// GraphSchemaVersion is the knowledge-graph file version this engine reads
const GraphSchemaVersion = 1

// ErrDuplicateConcept is returned when two concepts share an id
var ErrDuplicateConcept = errors.New("models: duplicate concept id")

// Graph is the static prerequisite graph of a course.
// Concepts keep their declaration order, which is also the order of the
// keys in the "concepts" object of the JSON file.
type Graph struct {
	SchemaVersion int
	concepts      []Concept
	index         map[string]int
}

// NewGraph builds a graph from concepts in declaration order
func NewGraph(concepts ...Concept) (*Graph, error) {
	g := &Graph{
		SchemaVersion: GraphSchemaVersion,
		concepts:      make([]Concept, 0, len(concepts)),
		index:         make(map[string]int, len(concepts)),
	}
	for _, c := range concepts {
		if err := g.add(c); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Graph) add(c Concept) error {
	if c.ID == "" {
		return fmt.Errorf("models: concept with empty id")
	}
	if g.index == nil {
		g.index = make(map[string]int)
	}
	if _, exists := g.index[c.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateConcept, c.ID)
	}
	g.index[c.ID] = len(g.concepts)
	g.concepts = append(g.concepts, c)
	return nil
}

// Len returns the number of concepts
func (g *Graph) Len() int {
	if g == nil {
		return 0
	}
	return len(g.concepts)
}

// Concepts returns a copy of the concepts in declaration order
func (g *Graph) Concepts() []Concept {
	if g == nil {
		return nil
	}
	out := make([]Concept, len(g.concepts))
	copy(out, g.concepts)
	return out
}

// IDs returns concept ids in declaration order
func (g *Graph) IDs() []string {
	if g == nil {
		return nil
	}
	ids := make([]string, len(g.concepts))
	for i, c := range g.concepts {
		ids[i] = c.ID
	}
	return ids
}

// Concept looks a concept up by id
func (g *Graph) Concept(id string) (Concept, bool) {
	if g == nil {
		return Concept{}, false
	}
	i, ok := g.index[id]
	if !ok {
		return Concept{}, false
	}
	return g.concepts[i], true
}

// Has reports whether id is declared in the graph
func (g *Graph) Has(id string) bool {
	_, ok := g.Concept(id)
	return ok
}

// Position returns the declaration index of id
func (g *Graph) Position(id string) (int, bool) {
	if g == nil {
		return 0, false
	}
	i, ok := g.index[id]
	return i, ok
}

type graphHeader struct {
	SchemaVersion int             `json:"schema_version"`
	Concepts      json.RawMessage `json:"concepts"`
}

// MarshalJSON writes concepts as an object keyed by id, in declaration order.
func (g *Graph) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"schema_version":%d,"concepts":{`, g.SchemaVersion)
	for i, c := range g.concepts {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("models: encode concept %q: %w", c.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the concepts object token by token so the key order
// survives decoding.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var h graphHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return fmt.Errorf("models: decode graph: %w", err)
	}

	fresh := Graph{SchemaVersion: h.SchemaVersion, index: make(map[string]int)}
	if len(h.Concepts) > 0 && !bytes.Equal(bytes.TrimSpace(h.Concepts), []byte("null")) {
		dec := json.NewDecoder(bytes.NewReader(h.Concepts))
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("models: decode concepts: %w", err)
		}
		if d, ok := tok.(json.Delim); !ok || d != '{' {
			return fmt.Errorf("models: concepts must be an object")
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("models: decode concepts: %w", err)
			}
			id, ok := tok.(string)
			if !ok {
				return fmt.Errorf("models: unexpected token %v in concepts", tok)
			}
			var c Concept
			if err := dec.Decode(&c); err != nil {
				return fmt.Errorf("models: concept %q: %w", id, err)
			}
			c.ID = id
			if err := fresh.add(c); err != nil {
				return err
			}
		}
		if _, err := dec.Token(); err != nil {
			return fmt.Errorf("models: decode concepts: %w", err)
		}
	}

	*g = fresh
	return nil
}
