package models

import "math"

// Mastery score weights
const (
	AccuracyWeight  = 0.5
	StabilityWeight = 0.3
	BloomWeight     = 0.2

	// StabilitySaturation is the stability in days that counts as fully stable
	StabilitySaturation = 30.0
)

// ComputeMasteryScore combines accuracy, normalized stability and Bloom
// progress into a score in [0, 1]. Accuracy counts as 0 until the concept
// has been practiced; the other two terms always count.
func ComputeMasteryScore(cp ConceptProgress) float64 {
	accuracy := 0.0
	if cp.PracticeCount > 0 {
		accuracy = float64(cp.CorrectCount) / float64(cp.PracticeCount)
	}
	stability := math.Min(math.Max(cp.MemoryState.Stability, 0)/StabilitySaturation, 1)
	bloom := 0.0
	if cp.BloomLevel.IsValid() {
		bloom = float64(cp.BloomLevel) / float64(MaxBloomLevel)
	}

	score := AccuracyWeight*accuracy + StabilityWeight*stability + BloomWeight*bloom
	if math.IsNaN(score) {
		return 0
	}
	return math.Min(math.Max(score, 0), 1)
}
