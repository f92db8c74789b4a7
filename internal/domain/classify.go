package domain

import "math"

// SafetyLevel is the tier a safety score falls into.
type SafetyLevel string

const (
	SafetyLevelHigh   SafetyLevel = "High"
	SafetyLevelMedium SafetyLevel = "Medium"
	SafetyLevelLow    SafetyLevel = "Low"
)

// Lower bounds of the High and Medium tiers. Bounds are inclusive.
const (
	highSafetyThreshold   = 80
	mediumSafetyThreshold = 50
)

const (
	adviceHigh   = "Road is in good condition. No immediate action required."
	adviceMedium = "Moderate safety. Consider improving road conditions and traffic management."
	adviceLow    = "High risk. Immediate action required: Improve lighting, road conditions, and reduce traffic density. Prioritize enforcement of traffic laws."
)

// Recommendation is the tier and advisory text for a safety score.
type Recommendation struct {
	Level  SafetyLevel `json:"safetyLevel"`
	Action string      `json:"action"`
}

// Classify maps a safety score to its tier. Scores outside [0,100] are
// clamped first and NaN counts as 0.
//
//	score >= 80      High
//	50 <= score < 80 Medium
//	score < 50       Low
func Classify(score float64) Recommendation {
	score = clampScore(score)
	switch {
	case score >= highSafetyThreshold:
		return Recommendation{Level: SafetyLevelHigh, Action: adviceHigh}
	case score >= mediumSafetyThreshold:
		return Recommendation{Level: SafetyLevelMedium, Action: adviceMedium}
	default:
		return Recommendation{Level: SafetyLevelLow, Action: adviceLow}
	}
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Min(100, math.Max(0, score))
}
