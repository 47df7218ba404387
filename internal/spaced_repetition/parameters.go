package spaced_repetition

import "fmt"

// Parameters are the 19 DSR weights.
//
//	w[0..3]   initial stability per rating (again..easy)
//	w[4..5]   initial difficulty intercept and slope
//	w[6..7]   difficulty delta and mean-reversion weight
//	w[8..10]  recall stability factor, stability exponent, retrievability factor
//	w[11..14] lapse base, difficulty exponent, stability exponent, retrievability factor
//	w[15..16] hard penalty, easy bonus
//	w[17..18] lapse ceiling factors, S_lapse <= S / e^(w[17]*w[18])
type Parameters [19]float64

// DefaultParameters are population-level priors
var DefaultParameters = Parameters{
	0.4, 0.6, 2.4, 5.8,
	4.93, 0.94, 0.86, 0.01,
	1.49, 0.14, 0.94,
	2.18, 0.05, 0.34, 1.26,
	0.29, 2.61,
	0.5425, 0.0912,
}

// LowerBounds is the minimum allowed value of each parameter
var LowerBounds = Parameters{
	0.001, 0.001, 0.001, 0.001,
	1.0, 0.001, 0.001, 0.001,
	0.0, 0.0, 0.001,
	0.001, 0.001, 0.001, 0.0,
	0.0, 1.0,
	0.001, 0.001,
}

// UpperBounds is the maximum allowed value of each parameter
var UpperBounds = Parameters{
	100.0, 100.0, 100.0, 100.0,
	10.0, 4.0, 4.0, 0.75,
	4.5, 0.8, 3.5,
	5.0, 0.25, 0.9, 4.0,
	1.0, 6.0,
	2.0, 2.0,
}

// ValidateParameters checks every weight against LowerBounds and UpperBounds
func ValidateParameters(p Parameters) error {
	for i := range p {
		if p[i] < LowerBounds[i] || p[i] > UpperBounds[i] {
			return fmt.Errorf("%w: w[%d] = %f, bounds [%f, %f]",
				ErrInvalidParameters, i, p[i], LowerBounds[i], UpperBounds[i])
		}
	}
	return nil
}
