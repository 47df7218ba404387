package spaced_repetition

import "errors"

// Sentinel errors for the memory model.
// Use errors.Is to check: errors.Is(err, spaced_repetition.ErrInvalidRating)
var (
	ErrInvalidRating     = errors.New("spaced_repetition: invalid rating")
	ErrInvalidRetention  = errors.New("spaced_repetition: desired retention must be in (0, 1)")
	ErrInvalidParameters = errors.New("spaced_repetition: parameters out of bounds")
)
