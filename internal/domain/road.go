package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// maxRoadNameLength bounds the unique key so it stays indexable.
const maxRoadNameLength = 200

// RoadCondition is the surveyed state of the road surface.
type RoadCondition string

const (
	RoadConditionGood    RoadCondition = "Good"
	RoadConditionAverage RoadCondition = "Average"
	RoadConditionPoor    RoadCondition = "Poor"
)

// Lighting describes street lighting along the road.
type Lighting string

const (
	LightingWellLit Lighting = "Well-lit"
	LightingDim     Lighting = "Dim"
	LightingDark    Lighting = "Dark"
)

// PedestrianInfrastructure records whether sidewalks and crossings exist.
type PedestrianInfrastructure string

const (
	PedestrianPresent PedestrianInfrastructure = "Present"
	PedestrianAbsent  PedestrianInfrastructure = "Absent"
)

// ParseRoadCondition normalizes a condition label. An empty label is allowed
// and means the condition is unknown.
func ParseRoadCondition(s string) (RoadCondition, error) {
	switch normalizeLabel(s) {
	case "":
		return "", nil
	case "good":
		return RoadConditionGood, nil
	case "average":
		return RoadConditionAverage, nil
	case "poor":
		return RoadConditionPoor, nil
	default:
		return "", fmt.Errorf("%w: unknown road condition %q", ErrInvalidInput, s)
	}
}

// ParseLighting normalizes a lighting label. Accepts "Well-lit", "WellLit"
// and "well lit" for the first level.
func ParseLighting(s string) (Lighting, error) {
	switch normalizeLabel(s) {
	case "":
		return "", nil
	case "welllit":
		return LightingWellLit, nil
	case "dim":
		return LightingDim, nil
	case "dark":
		return LightingDark, nil
	default:
		return "", fmt.Errorf("%w: unknown lighting %q", ErrInvalidInput, s)
	}
}

// ParsePedestrianInfrastructure normalizes a pedestrian infrastructure label.
func ParsePedestrianInfrastructure(s string) (PedestrianInfrastructure, error) {
	switch normalizeLabel(s) {
	case "":
		return "", nil
	case "present":
		return PedestrianPresent, nil
	case "absent":
		return PedestrianAbsent, nil
	default:
		return "", fmt.Errorf("%w: unknown pedestrian infrastructure %q", ErrInvalidInput, s)
	}
}

// normalizeLabel lowercases and strips spaces, hyphens and underscores.
func normalizeLabel(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(s)))
}

// RoadInput carries caller-supplied road attributes before validation.
// SafetyScore is optional; when set it must match the computed score.
type RoadInput struct {
	RoadName                 string   `json:"roadName"`
	Region                   string   `json:"region,omitempty"`
	AccidentCount            int      `json:"accidents"`
	TrafficDensity           float64  `json:"trafficDensity"`
	RoadCondition            string   `json:"roadCondition,omitempty"`
	Lighting                 string   `json:"lighting,omitempty"`
	PedestrianInfrastructure string   `json:"pedestrianInfrastructure,omitempty"`
	SafetyScore              *float64 `json:"safetyScore,omitempty"`
}

// RoadSafetyRecord is a road and the attributes its safety score derives from.
type RoadSafetyRecord struct {
	RoadName                 string                   `json:"roadName"`
	Region                   string                   `json:"region,omitempty"`
	AccidentCount            int                      `json:"accidents"`
	TrafficDensity           float64                  `json:"trafficDensity"`
	RoadCondition            RoadCondition            `json:"roadCondition,omitempty"`
	Lighting                 Lighting                 `json:"lighting,omitempty"`
	PedestrianInfrastructure PedestrianInfrastructure `json:"pedestrianInfrastructure,omitempty"`
	SafetyScore              int                      `json:"safetyScore"`
	CreatedAt                time.Time                `json:"createdAt"`
	UpdatedAt                time.Time                `json:"updatedAt"`
}

// NewRoadSafetyRecord validates the input, computes the safety score and
// stamps both timestamps with the current time.
func NewRoadSafetyRecord(in RoadInput) (RoadSafetyRecord, error) {
	name, err := normalizeRoadName(in.RoadName)
	if err != nil {
		return RoadSafetyRecord{}, err
	}
	condition, err := ParseRoadCondition(in.RoadCondition)
	if err != nil {
		return RoadSafetyRecord{}, err
	}
	lighting, err := ParseLighting(in.Lighting)
	if err != nil {
		return RoadSafetyRecord{}, err
	}
	pedestrian, err := ParsePedestrianInfrastructure(in.PedestrianInfrastructure)
	if err != nil {
		return RoadSafetyRecord{}, err
	}

	// accident_count is stored as a 32-bit integer.
	if in.AccidentCount > math.MaxInt32 {
		return RoadSafetyRecord{}, fmt.Errorf("%w: accident count %d exceeds %d", ErrInvalidInput, in.AccidentCount, math.MaxInt32)
	}
	score, err := CalculateSafetyScore(in.AccidentCount, condition, in.TrafficDensity)
	if err != nil {
		return RoadSafetyRecord{}, err
	}
	if in.SafetyScore != nil && *in.SafetyScore != float64(score) {
		return RoadSafetyRecord{}, fmt.Errorf("%w: safetyScore %g does not match computed score %d",
			ErrInvalidInput, *in.SafetyScore, score)
	}

	now := clock.Now().UTC()
	return RoadSafetyRecord{
		RoadName:                 name,
		Region:                   strings.TrimSpace(in.Region),
		AccidentCount:            in.AccidentCount,
		TrafficDensity:           in.TrafficDensity,
		RoadCondition:            condition,
		Lighting:                 lighting,
		PedestrianInfrastructure: pedestrian,
		SafetyScore:              score,
		CreatedAt:                now,
		UpdatedAt:                now,
	}, nil
}

// Rescore recomputes the safety score from the record's attributes and
// reports whether the previously held score differed.
func (r RoadSafetyRecord) Rescore() (RoadSafetyRecord, bool, error) {
	score, err := CalculateSafetyScore(r.AccidentCount, r.RoadCondition, r.TrafficDensity)
	if err != nil {
		return r, false, err
	}
	drifted := score != r.SafetyScore
	r.SafetyScore = score
	return r, drifted, nil
}

// Features returns the attributes the external risk model is queried with.
func (r RoadSafetyRecord) Features() RiskFeatures {
	return RiskFeatures{
		TrafficDensity:           r.TrafficDensity,
		RoadCondition:            r.RoadCondition,
		Lighting:                 r.Lighting,
		PedestrianInfrastructure: r.PedestrianInfrastructure,
	}
}

func normalizeRoadName(s string) (string, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return "", fmt.Errorf("%w: roadName is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(name) > maxRoadNameLength {
		return "", fmt.Errorf("%w: roadName exceeds %d characters", ErrInvalidInput, maxRoadNameLength)
	}
	return name, nil
}

// validFinite reports whether v is neither NaN nor infinite.
func validFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
