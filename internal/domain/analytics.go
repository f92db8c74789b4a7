package domain

import "sort"

// AnalyticsEntry is one road's row in the dashboard charts.
type AnalyticsEntry struct {
	Region         string        `json:"region"`
	RoadName       string        `json:"roadName"`
	Accidents      int           `json:"accidents"`
	TrafficDensity float64       `json:"trafficDensity"`
	RoadCondition  RoadCondition `json:"roadCondition"`
	SafetyScore    int           `json:"safetyScore"`
}

// HeatmapPoint is a hazard location weighted by how unsafe its road is.
type HeatmapPoint struct {
	RoadName    string  `json:"roadName"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	SafetyScore int     `json:"safetyScore"`
	Weight      int     `json:"weight"`
}

// BuildAnalytics returns chart rows sorted by region then road name. Roads
// without a region are grouped under their own name.
func BuildAnalytics(roads []RoadSafetyRecord) []AnalyticsEntry {
	entries := make([]AnalyticsEntry, 0, len(roads))
	for _, r := range roads {
		region := r.Region
		if region == "" {
			region = r.RoadName
		}
		entries = append(entries, AnalyticsEntry{
			Region:         region,
			RoadName:       r.RoadName,
			Accidents:      r.AccidentCount,
			TrafficDensity: r.TrafficDensity,
			RoadCondition:  r.RoadCondition,
			SafetyScore:    r.SafetyScore,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Region != entries[j].Region {
			return entries[i].Region < entries[j].Region
		}
		return entries[i].RoadName < entries[j].RoadName
	})
	return entries
}

// BuildHeatmap places every located hazard report on the map, weighted by
// 100 minus the safety score of the road it was reported on. Reports without
// coordinates or on unknown roads are skipped.
func BuildHeatmap(hazards []HazardReport, roads []RoadSafetyRecord) []HeatmapPoint {
	scores := make(map[string]int, len(roads))
	for _, r := range roads {
		scores[r.RoadName] = r.SafetyScore
	}

	points := make([]HeatmapPoint, 0, len(hazards))
	for _, h := range hazards {
		if !h.HasCoords() {
			continue
		}
		score, ok := scores[h.RoadName]
		if !ok {
			continue
		}
		points = append(points, HeatmapPoint{
			RoadName:    h.RoadName,
			Latitude:    h.Latitude,
			Longitude:   h.Longitude,
			SafetyScore: score,
			Weight:      100 - score,
		})
	}
	return points
}
