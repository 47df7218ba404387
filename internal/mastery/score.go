package mastery

import (
	"math"

	"github.com/example/tutorcore/pkg/models"
)

// Score weights and thresholds
const (
	AccuracyWeight  = models.AccuracyWeight
	StabilityWeight = models.StabilityWeight
	BloomWeight     = models.BloomWeight

	// StabilitySaturation is the stability in days that counts as fully stable
	StabilitySaturation = models.StabilitySaturation

	MasteryThreshold   = 0.85
	AdvanceAccuracy    = 0.80
	RemediateAccuracy  = 0.40
	RelapseScore       = 0.40
	AccuracyWindow     = 5
	MinWindowedResults = 3
)

// ComputeMasteryScore is 0.5*accuracy + 0.3*min(S/30, 1) + 0.2*bloom/6,
// clamped to [0, 1]. Accuracy is 0 for a concept never practiced.
func ComputeMasteryScore(cp models.ConceptProgress) float64 {
	return models.ComputeMasteryScore(cp)
}

// IsMastered reports score >= 0.85 with the Bloom target reached
func IsMastered(cp models.ConceptProgress, bloomTarget models.BloomLevel) bool {
	return cp.MasteryScore >= MasteryThreshold && cp.BloomLevel >= bloomTarget
}

// WindowedAccuracy returns the accuracy over the last five results, or all
// of them when fewer. ok is false below three results.
func WindowedAccuracy(results []bool) (accuracy float64, ok bool) {
	if len(results) < MinWindowedResults {
		return 0, false
	}
	window := results
	if len(window) > AccuracyWindow {
		window = window[len(window)-AccuracyWindow:]
	}
	correct := 0
	for _, r := range window {
		if r {
			correct++
		}
	}
	return float64(correct) / float64(len(window)), true
}

// ShouldAdvance reports windowed accuracy above 0.80
func ShouldAdvance(cp models.ConceptProgress) bool {
	acc, ok := WindowedAccuracy(cp.RecentResults)
	return ok && acc > AdvanceAccuracy
}

// ShouldRemediate reports windowed accuracy below 0.40, or a windowed
// accuracy that fell with each of the last three results.
func ShouldRemediate(cp models.ConceptProgress) bool {
	if acc, ok := WindowedAccuracy(cp.RecentResults); ok && acc < RemediateAccuracy {
		return true
	}
	return declining(cp.RecentResults)
}

// declining needs every one of the three windows to hold at least
// MinWindowedResults results.
func declining(results []bool) bool {
	n := len(results)
	if n < MinWindowedResults+2 {
		return false
	}
	prev := math.Inf(1)
	for k := 2; k >= 0; k-- {
		acc, _ := WindowedAccuracy(results[:n-k])
		if acc >= prev {
			return false
		}
		prev = acc
	}
	return true
}

// NextBloomLevel returns the level after l, false at the ceiling
func NextBloomLevel(l models.BloomLevel) (models.BloomLevel, bool) {
	if !l.IsValid() || l >= models.MaxBloomLevel {
		return l, false
	}
	return l + 1, true
}

// Adjustment is the difficulty signal for the next exercise
type Adjustment string

const (
	AdjustEasier   Adjustment = "easier"
	AdjustMaintain Adjustment = "maintain"
	AdjustHarder   Adjustment = "harder"
)

// DifficultyAdjustment suggests exercise difficulty from windowed accuracy
func DifficultyAdjustment(cp models.ConceptProgress) Adjustment {
	acc, ok := WindowedAccuracy(cp.RecentResults)
	switch {
	case !ok:
		return AdjustMaintain
	case acc > 0.90:
		return AdjustHarder
	case acc < 0.65:
		return AdjustEasier
	}
	return AdjustMaintain
}
