package mastery

import (
	"fmt"
	"time"

	"github.com/example/tutorcore/pkg/models"
)

// RecordError returns cp with the mistake appended to its error history.
// The kind comes from the assessor; this package only stores it.
func RecordError(cp models.ConceptProgress, kind models.ErrorKind, description string, at time.Time) (models.ConceptProgress, error) {
	if !kind.IsValid() {
		return cp, fmt.Errorf("%w: %q", ErrInvalidErrorKind, kind)
	}
	out := cp.Clone()
	out.ErrorHistory = append(out.ErrorHistory, models.ErrorEntry{
		Kind:        kind,
		Description: description,
		At:          at,
	})
	return out, nil
}

// HasPersistentMisconception reports two or more misconceptions with the
// same description
func HasPersistentMisconception(cp models.ConceptProgress) bool {
	seen := make(map[string]int)
	for _, e := range cp.ErrorHistory {
		if e.Kind != models.ErrorMisconception {
			continue
		}
		seen[e.Description]++
		if seen[e.Description] >= 2 {
			return true
		}
	}
	return false
}
