package domain

import (
	"fmt"
	"math"
)

// Weights of the three safety-score components. They sum to 1 so the
// weighted result stays within [0,100].
const (
	accidentWeight  = 0.5
	conditionWeight = 0.3
	trafficWeight   = 0.2

	// defaultConditionScore applies to empty or unrecognized conditions.
	defaultConditionScore = 50
)

// conditionScores is the closed lookup table for road condition.
var conditionScores = map[RoadCondition]float64{
	RoadConditionGood:    90,
	RoadConditionAverage: 60,
	RoadConditionPoor:    30,
}

// CalculateSafetyScore combines accident history, road condition and traffic
// density into a safety score in [0,100]. Each accident costs 5 points of the
// accident component and every 10 vehicles/hour cost 1 point of the traffic
// component; both components floor at 0.
func CalculateSafetyScore(accidentCount int, condition RoadCondition, trafficDensity float64) (int, error) {
	if accidentCount < 0 {
		return 0, fmt.Errorf("%w: accident count %d is negative", ErrInvalidInput, accidentCount)
	}
	if !validFinite(trafficDensity) || trafficDensity < 0 {
		return 0, fmt.Errorf("%w: traffic density %g must be a non-negative number", ErrInvalidInput, trafficDensity)
	}

	accidentScore := math.Max(0, 100-float64(accidentCount)*5)
	trafficScore := math.Max(0, 100-trafficDensity/10)

	// Explicit conversions keep each product rounded so the result does not
	// depend on whether the platform fuses multiply-add.
	weighted := float64(accidentWeight*accidentScore) +
		float64(conditionWeight*ConditionScore(condition)) +
		float64(trafficWeight*trafficScore)

	return int(math.Round(weighted)), nil
}

// ConditionScore returns the condition component for c, falling back to the
// default for unknown conditions.
func ConditionScore(c RoadCondition) float64 {
	if s, ok := conditionScores[c]; ok {
		return s
	}
	return defaultConditionScore
}
