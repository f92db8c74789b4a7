// Package safetytest provides in-memory repositories for tests of code built
// on the safety service.
package safetytest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/couchcryptid/road-safety-service/internal/domain"
)

// RoadStore is an in-memory safety.RoadRepository.
type RoadStore struct {
	mu    sync.Mutex
	roads map[string]domain.RoadSafetyRecord

	// Err, when set, is returned by every call.
	Err error
}

func NewRoadStore(seed ...domain.RoadSafetyRecord) *RoadStore {
	s := &RoadStore{roads: make(map[string]domain.RoadSafetyRecord)}
	for _, r := range seed {
		s.roads[r.RoadName] = r
	}
	return s
}

func (s *RoadStore) CreateRoad(_ context.Context, road domain.RoadSafetyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.roads[road.RoadName]; ok {
		return fmt.Errorf("%w: road %q already exists", domain.ErrConflict, road.RoadName)
	}
	s.roads[road.RoadName] = road
	return nil
}

func (s *RoadStore) UpdateRoad(_ context.Context, road domain.RoadSafetyRecord) (domain.RoadSafetyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return domain.RoadSafetyRecord{}, s.Err
	}
	existing, ok := s.roads[road.RoadName]
	if !ok {
		return domain.RoadSafetyRecord{}, fmt.Errorf("%w: road %q", domain.ErrNotFound, road.RoadName)
	}
	road.CreatedAt = existing.CreatedAt
	s.roads[road.RoadName] = road
	return road, nil
}

func (s *RoadStore) DeleteRoad(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.roads[name]; !ok {
		return fmt.Errorf("%w: road %q", domain.ErrNotFound, name)
	}
	delete(s.roads, name)
	return nil
}

func (s *RoadStore) FindRoadByName(_ context.Context, name string) (domain.RoadSafetyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return domain.RoadSafetyRecord{}, s.Err
	}
	road, ok := s.roads[name]
	if !ok {
		return domain.RoadSafetyRecord{}, fmt.Errorf("%w: road %q", domain.ErrNotFound, name)
	}
	return road, nil
}

// ListRoads returns records ordered by name.
func (s *RoadStore) ListRoads(_ context.Context) ([]domain.RoadSafetyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]domain.RoadSafetyRecord, 0, len(s.roads))
	for _, r := range s.roads {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b domain.RoadSafetyRecord) int {
		return strings.Compare(a.RoadName, b.RoadName)
	})
	return out, nil
}

func (s *RoadStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Err
}

// Put stores a record as-is, bypassing validation and scoring.
func (s *RoadStore) Put(road domain.RoadSafetyRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roads[road.RoadName] = road
}

// HazardStore is an in-memory safety.HazardRepository.
type HazardStore struct {
	mu      sync.Mutex
	reports []domain.HazardReport

	// Err, when set, is returned by every call.
	Err error
}

func NewHazardStore(seed ...domain.HazardReport) *HazardStore {
	return &HazardStore{reports: slices.Clone(seed)}
}

func (s *HazardStore) CreateHazard(_ context.Context, report domain.HazardReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.reports = append(s.reports, report)
	return nil
}

// ListHazards returns reports in insertion order.
func (s *HazardStore) ListHazards(_ context.Context, roadName string) ([]domain.HazardReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := []domain.HazardReport{}
	for _, r := range s.reports {
		if roadName == "" || r.RoadName == roadName {
			out = append(out, r)
		}
	}
	return out, nil
}

// Predictor is a domain.RiskPredictor returning a fixed probability or error.
type Predictor struct {
	mu       sync.Mutex
	P        float64
	Err      error
	Features []domain.RiskFeatures
}

func (p *Predictor) Predict(_ context.Context, f domain.RiskFeatures) (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Features = append(p.Features, f)
	return p.P, p.Err
}
