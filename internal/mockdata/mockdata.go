// Package mockdata generates deterministic road and hazard fixtures for demos,
// load tests and the relay test suites.
package mockdata

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jaswdr/faker"
)

// BaseTime anchors every timestamp in a generated fixture.
var BaseTime = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

var (
	regions = []string{
		"Central Delhi", "East Delhi", "New Delhi", "North Delhi",
		"North West Delhi", "Shahdara", "South Delhi", "South West Delhi", "West Delhi",
	}
	conditions  = []string{"Good", "Average", "Poor", ""}
	lightings   = []string{"Well-lit", "Dim", "Dark", ""}
	pedestrians = []string{"Present", "Absent", ""}
)

// Delhi bounding box, in 1e-4 degree steps.
const (
	minLat, latSpan = 28.40, 4800
	minLon, lonSpan = 76.84, 5100
)

// Options controls fixture size and randomness.
type Options struct {
	Seed    int64
	Roads   int
	Hazards int
}

// Fixture is a scored road set plus hazard reports on those roads.
type Fixture struct {
	Seed    int64                     `json:"seed"`
	Roads   []domain.RoadSafetyRecord `json:"roads"`
	Hazards []domain.HazardReport     `json:"hazards"`
}

// Generate builds a fixture. The same options always produce the same fixture.
func Generate(opts Options) (Fixture, error) {
	if opts.Roads < 1 {
		return Fixture{}, fmt.Errorf("roads must be positive, got %d", opts.Roads)
	}
	if opts.Hazards < 0 {
		return Fixture{}, fmt.Errorf("hazards must not be negative, got %d", opts.Hazards)
	}

	rng := rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // deterministic fixtures
	fake := faker.NewWithSeed(rand.NewSource(opts.Seed))

	roads, names, err := generateRoads(fake, opts.Roads)
	if err != nil {
		return Fixture{}, err
	}
	hazards, err := generateHazards(fake, rng, names, opts.Hazards)
	if err != nil {
		return Fixture{}, err
	}
	return Fixture{Seed: opts.Seed, Roads: roads, Hazards: hazards}, nil
}

func generateRoads(fake faker.Faker, n int) ([]domain.RoadSafetyRecord, []string, error) {
	roads := make([]domain.RoadSafetyRecord, 0, n)
	names := make([]string, 0, n)
	seen := make(map[string]bool, n)

	for i := range n {
		name := fake.Address().StreetName() + " Road"
		if seen[name] {
			name = fmt.Sprintf("%s %d", name, i)
		}
		seen[name] = true

		road, err := domain.NewRoadSafetyRecord(domain.RoadInput{
			RoadName:                 name,
			Region:                   fake.RandomStringElement(regions),
			AccidentCount:            fake.IntBetween(0, 25),
			TrafficDensity:           fake.Float64(1, 0, 1500),
			RoadCondition:            fake.RandomStringElement(conditions),
			Lighting:                 fake.RandomStringElement(lightings),
			PedestrianInfrastructure: fake.RandomStringElement(pedestrians),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("road %d: %w", i, err)
		}
		road.CreatedAt = BaseTime.Add(time.Duration(i) * time.Hour)
		road.UpdatedAt = road.CreatedAt
		roads = append(roads, road)
		names = append(names, name)
	}
	return roads, names, nil
}

func generateHazards(fake faker.Faker, rng *rand.Rand, roads []string, n int) ([]domain.HazardReport, error) {
	hazards := make([]domain.HazardReport, 0, n)
	for i := range n {
		in := domain.HazardInput{
			RoadName:    fake.RandomStringElement(roads),
			Description: fake.Lorem().Sentence(8),
		}
		// One in four reports arrives without a location.
		if fake.IntBetween(0, 3) != 0 {
			lat := minLat + float64(fake.IntBetween(0, latSpan))/10000
			lon := minLon + float64(fake.IntBetween(0, lonSpan))/10000
			in.Latitude, in.Longitude = &lat, &lon
		}

		report, err := domain.NewHazardReport(in)
		if err != nil {
			return nil, fmt.Errorf("hazard %d: %w", i, err)
		}
		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("hazard %d id: %w", i, err)
		}
		report.ID = id.String()
		report.ReportedAt = BaseTime.Add(time.Duration(i) * time.Minute)
		hazards = append(hazards, report)
	}
	return hazards, nil
}

// Write stores the fixture as indented JSON, creating parent directories.
func Write(path string, f Fixture) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// Load reads a fixture written by Write.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, err
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return f, nil
}
