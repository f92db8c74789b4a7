package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestBuildAnalytics(t *testing.T) {
	roads := []RoadSafetyRecord{
		{RoadName: "Outer Ring", Region: "North", AccidentCount: 9, TrafficDensity: 900, RoadCondition: RoadConditionPoor, SafetyScore: 30},
		{RoadName: "Mall Road", AccidentCount: 1, TrafficDensity: 120, RoadCondition: RoadConditionGood, SafetyScore: 91},
		{RoadName: "Inner Ring", Region: "North", AccidentCount: 3, TrafficDensity: 400, RoadCondition: RoadConditionAverage, SafetyScore: 68},
	}

	got := BuildAnalytics(roads)

	want := []AnalyticsEntry{
		{Region: "Mall Road", RoadName: "Mall Road", Accidents: 1, TrafficDensity: 120, RoadCondition: RoadConditionGood, SafetyScore: 91},
		{Region: "North", RoadName: "Inner Ring", Accidents: 3, TrafficDensity: 400, RoadCondition: RoadConditionAverage, SafetyScore: 68},
		{Region: "North", RoadName: "Outer Ring", Accidents: 9, TrafficDensity: 900, RoadCondition: RoadConditionPoor, SafetyScore: 30},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("analytics mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildAnalytics_Empty(t *testing.T) {
	got := BuildAnalytics(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildHeatmap(t *testing.T) {
	roads := []RoadSafetyRecord{
		{RoadName: "Ring Road", SafetyScore: 35},
		{RoadName: "Mall Road", SafetyScore: 90},
	}
	hazards := []HazardReport{
		{ID: "a", RoadName: "Ring Road", Latitude: 28.57, Longitude: 77.21},
		{ID: "b", RoadName: "Mall Road", Latitude: 28.60, Longitude: 77.19},
		{ID: "c", RoadName: "Ring Road"},                                   // no coordinates
		{ID: "d", RoadName: "Ghost Lane", Latitude: 28.61, Longitude: 77.2}, // unknown road
	}

	got := BuildHeatmap(hazards, roads)

	assert.Equal(t, []HeatmapPoint{
		{RoadName: "Ring Road", Latitude: 28.57, Longitude: 77.21, SafetyScore: 35, Weight: 65},
		{RoadName: "Mall Road", Latitude: 28.60, Longitude: 77.19, SafetyScore: 90, Weight: 10},
	}, got)
}
