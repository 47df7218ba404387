package models

// Outcome is one practice result produced by the external assessor
type Outcome struct {
	ConceptID        string    `json:"concept_id"`
	Correct          bool      `json:"correct"`
	Rating           int       `json:"rating"` // 1=again, 2=hard, 3=good, 4=easy
	ErrorKind        ErrorKind `json:"error_kind,omitempty"`
	ErrorDescription string    `json:"error_description,omitempty"`
}
