package domain

import (
	"context"
	"fmt"
	"math"
)

// RiskLevel is the band an accident-risk probability falls into.
type RiskLevel string

const (
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelModerate RiskLevel = "moderate"
	RiskLevelLow      RiskLevel = "low"
)

// Exclusive lower bounds of the high and moderate risk bands.
const (
	highRiskThreshold     = 0.7
	moderateRiskThreshold = 0.4
)

// RiskFeatures are the road attributes the external risk model scores.
type RiskFeatures struct {
	TrafficDensity           float64                  `json:"trafficDensity"`
	RoadCondition            RoadCondition            `json:"roadCondition,omitempty"`
	Lighting                 Lighting                 `json:"lighting,omitempty"`
	PedestrianInfrastructure PedestrianInfrastructure `json:"pedestrianInfrastructure,omitempty"`
}

// RiskPredictor estimates the probability of an accident on a road.
// Implementations return an error wrapping ErrUpstreamUnavailable when the
// model cannot be reached.
type RiskPredictor interface {
	Predict(ctx context.Context, features RiskFeatures) (float64, error)
}

// RecommendActions maps an accident-risk probability in [0,1] to an ordered
// list of actions, most urgent first.
//
//	p > 0.7        high: four actions
//	0.4 < p <= 0.7 moderate: two actions
//	p <= 0.4       low: one action
func RecommendActions(probability float64) (RiskLevel, []string, error) {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return "", nil, fmt.Errorf("%w: risk probability %g outside [0,1]", ErrInvalidInput, probability)
	}

	switch {
	case probability > highRiskThreshold:
		return RiskLevelHigh, []string{
			"Increase traffic monitoring in this area.",
			"Improve road conditions or repair damaged infrastructure.",
			"Install better lighting in poorly lit areas.",
			"Improve pedestrian infrastructure where necessary.",
		}, nil
	case probability > moderateRiskThreshold:
		return RiskLevelModerate, []string{
			"Monitor traffic patterns during peak hours.",
			"Enhance road signage and visibility.",
		}, nil
	default:
		return RiskLevelLow, []string{
			"Road is relatively safe. Maintain existing infrastructure.",
		}, nil
	}
}

// RiskAssessment is the combined view of a road's score and predicted risk.
type RiskAssessment struct {
	RoadName        string    `json:"roadName"`
	SafetyScore     int       `json:"safetyScore"`
	Probability     float64   `json:"accidentRiskPrediction"`
	RiskLevel       RiskLevel `json:"riskLevel"`
	Recommendations []string  `json:"recommendations"`
}

// AssessRisk builds a RiskAssessment for a scored road and a predicted probability.
func AssessRisk(road RoadSafetyRecord, probability float64) (RiskAssessment, error) {
	level, actions, err := RecommendActions(probability)
	if err != nil {
		return RiskAssessment{}, err
	}
	return RiskAssessment{
		RoadName:        road.RoadName,
		SafetyScore:     road.SafetyScore,
		Probability:     probability,
		RiskLevel:       level,
		Recommendations: actions,
	}, nil
}
