package spaced_repetition

import "fmt"

// Rating is the quality of recall reported for a review
type Rating int

const (
	Again Rating = iota + 1 // Failed to recall (lapse)
	Hard                    // Recalled with significant difficulty
	Good                    // Recalled with some effort
	Easy                    // Recalled effortlessly
)

var ratingNames = [...]string{Again: "again", Hard: "hard", Good: "good", Easy: "easy"}

// IsValid reports whether r is one of Again..Easy
func (r Rating) IsValid() bool {
	return r >= Again && r <= Easy
}

// IsSuccess reports whether r counts as a successful recall
func (r Rating) IsSuccess() bool {
	return r >= Hard && r <= Easy
}

func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// ParseRating converts an outcome's integer rating
func ParseRating(v int) (Rating, error) {
	r := Rating(v)
	if !r.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRating, v)
	}
	return r, nil
}
