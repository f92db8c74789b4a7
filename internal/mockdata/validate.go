package mockdata

import (
	"fmt"

	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/google/uuid"
)

// Phase collects the problems found by one group of fixture checks.
type Phase struct {
	Name   string
	Errors []string
}

func (p *Phase) errorf(format string, args ...any) {
	p.Errors = append(p.Errors, fmt.Sprintf(format, args...))
}

// Passed reports whether the phase found no problems.
func (p *Phase) Passed() bool { return len(p.Errors) == 0 }

// Validate checks a fixture against the scoring, classification and hazard
// rules the service applies.
func Validate(f Fixture) []*Phase {
	return []*Phase{
		validateRoads(f.Roads),
		validateHazards(f.Hazards, f.Roads),
		validateHeatmap(f.Hazards, f.Roads),
		validateAnalytics(f.Roads),
	}
}

func validateRoads(roads []domain.RoadSafetyRecord) *Phase {
	p := &Phase{Name: "Phase 1: Road scoring"}
	if len(roads) == 0 {
		p.errorf("fixture has no roads")
	}

	seen := make(map[string]bool, len(roads))
	for i, r := range roads {
		if r.RoadName == "" {
			p.errorf("road %d: empty name", i)
			continue
		}
		if seen[r.RoadName] {
			p.errorf("road %q: duplicate name", r.RoadName)
		}
		seen[r.RoadName] = true

		if _, err := domain.ParseRoadCondition(string(r.RoadCondition)); err != nil {
			p.errorf("road %q: %v", r.RoadName, err)
		}
		if _, err := domain.ParseLighting(string(r.Lighting)); err != nil {
			p.errorf("road %q: %v", r.RoadName, err)
		}
		if _, err := domain.ParsePedestrianInfrastructure(string(r.PedestrianInfrastructure)); err != nil {
			p.errorf("road %q: %v", r.RoadName, err)
		}

		score, err := domain.CalculateSafetyScore(r.AccidentCount, r.RoadCondition, r.TrafficDensity)
		if err != nil {
			p.errorf("road %q: %v", r.RoadName, err)
			continue
		}
		if score != r.SafetyScore {
			p.errorf("road %q: stored score %d, computed %d", r.RoadName, r.SafetyScore, score)
		}
		if rec := domain.Classify(float64(score)); rec.Action == "" {
			p.errorf("road %q: no advisory for score %d", r.RoadName, score)
		}
	}
	return p
}

func validateHazards(hazards []domain.HazardReport, roads []domain.RoadSafetyRecord) *Phase {
	p := &Phase{Name: "Phase 2: Hazard reports"}

	known := make(map[string]bool, len(roads))
	for _, r := range roads {
		known[r.RoadName] = true
	}

	ids := make(map[string]bool, len(hazards))
	for i, h := range hazards {
		if _, err := uuid.Parse(h.ID); err != nil {
			p.errorf("hazard %d: invalid id %q", i, h.ID)
		} else if ids[h.ID] {
			p.errorf("hazard %d: duplicate id %s", i, h.ID)
		}
		ids[h.ID] = true

		if !known[h.RoadName] {
			p.errorf("hazard %s: unknown road %q", h.ID, h.RoadName)
		}
		if h.Description == "" {
			p.errorf("hazard %s: empty description", h.ID)
		}
		if h.ReportedAt.IsZero() {
			p.errorf("hazard %s: zero reportedAt", h.ID)
		}
		if h.Latitude < -90 || h.Latitude > 90 || h.Longitude < -180 || h.Longitude > 180 {
			p.errorf("hazard %s: coordinates (%g, %g) out of range", h.ID, h.Latitude, h.Longitude)
		}
	}
	return p
}

func validateHeatmap(hazards []domain.HazardReport, roads []domain.RoadSafetyRecord) *Phase {
	p := &Phase{Name: "Phase 3: Heatmap weights"}

	located := 0
	for _, h := range hazards {
		if h.HasCoords() {
			located++
		}
	}

	points := domain.BuildHeatmap(hazards, roads)
	if len(points) != located {
		p.errorf("heatmap has %d points, fixture has %d located hazards", len(points), located)
	}
	for _, pt := range points {
		if pt.Weight != 100-pt.SafetyScore {
			p.errorf("heatmap point on %q: weight %d for score %d", pt.RoadName, pt.Weight, pt.SafetyScore)
		}
		if pt.Weight < 0 || pt.Weight > 100 {
			p.errorf("heatmap point on %q: weight %d outside [0,100]", pt.RoadName, pt.Weight)
		}
	}
	return p
}

func validateAnalytics(roads []domain.RoadSafetyRecord) *Phase {
	p := &Phase{Name: "Phase 4: Analytics grouping"}

	entries := domain.BuildAnalytics(roads)
	if len(entries) != len(roads) {
		p.errorf("analytics has %d rows for %d roads", len(entries), len(roads))
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.Region > cur.Region || (prev.Region == cur.Region && prev.RoadName > cur.RoadName) {
			p.errorf("analytics rows %d and %d out of order", i-1, i)
		}
	}
	return p
}
