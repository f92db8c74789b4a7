// Package safety is the application layer of the road safety service. It owns
// the persistence, risk-model and geocoding collaborators and exposes the
// operations behind the HTTP API.
package safety

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/couchcryptid/road-safety-service/internal/observability"
)

// RoadRepository persists road safety records keyed by road name.
type RoadRepository interface {
	CreateRoad(ctx context.Context, road domain.RoadSafetyRecord) error
	UpdateRoad(ctx context.Context, road domain.RoadSafetyRecord) (domain.RoadSafetyRecord, error)
	DeleteRoad(ctx context.Context, name string) error
	FindRoadByName(ctx context.Context, name string) (domain.RoadSafetyRecord, error)
	ListRoads(ctx context.Context) ([]domain.RoadSafetyRecord, error)
	Ping(ctx context.Context) error
}

// HazardRepository persists append-only hazard reports.
type HazardRepository interface {
	CreateHazard(ctx context.Context, report domain.HazardReport) error
	ListHazards(ctx context.Context, roadName string) ([]domain.HazardReport, error)
}

// Deps bundles the collaborators injected at startup. Predictor and Geocoder
// are optional: a nil Predictor makes risk lookups fail with
// domain.ErrUpstreamUnavailable, a nil Geocoder skips enrichment.
type Deps struct {
	Roads     RoadRepository
	Hazards   HazardRepository
	Predictor domain.RiskPredictor
	Geocoder  domain.Geocoder
	Logger    *slog.Logger
	Metrics   *observability.Metrics
}

// Service implements the road safety operations.
type Service struct {
	roads     RoadRepository
	hazards   HazardRepository
	predictor domain.RiskPredictor
	geocoder  domain.Geocoder
	logger    *slog.Logger
	metrics   *observability.Metrics
}

func NewService(d Deps) *Service {
	return &Service{
		roads:     d.Roads,
		hazards:   d.Hazards,
		predictor: d.Predictor,
		geocoder:  d.Geocoder,
		logger:    d.Logger,
		metrics:   d.Metrics,
	}
}

// ScoreView is the score lookup for a single road.
type ScoreView struct {
	RoadName       string  `json:"roadName"`
	SafetyScore    int     `json:"safetyScore"`
	Accidents      int     `json:"accidents"`
	TrafficDensity float64 `json:"trafficDensity"`
}

// ScoreSummary is one row of the score listing.
type ScoreSummary struct {
	RoadName       string               `json:"roadName"`
	Accidents      int                  `json:"accidents"`
	RoadCondition  domain.RoadCondition `json:"roadCondition"`
	TrafficDensity float64              `json:"trafficDensity"`
	SafetyScore    int                  `json:"safetyScore"`
}

// RoadRecommendation pairs a road's score with its safety tier and advisory.
type RoadRecommendation struct {
	RoadName    string             `json:"roadName"`
	SafetyScore int                `json:"safetyScore"`
	Level       domain.SafetyLevel `json:"safetyLevel"`
	Action      string             `json:"action"`
}

// AddRoad validates and scores a new record and stores it. A caller-supplied
// score must match the computed one.
func (s *Service) AddRoad(ctx context.Context, in domain.RoadInput) (domain.RoadSafetyRecord, error) {
	road, err := domain.NewRoadSafetyRecord(in)
	if err != nil {
		return domain.RoadSafetyRecord{}, err
	}
	s.metrics.ScoresComputed.Inc()

	if err := s.roads.CreateRoad(ctx, road); err != nil {
		return domain.RoadSafetyRecord{}, fmt.Errorf("create road: %w", err)
	}
	s.logger.Info("road added", "road_name", road.RoadName, "safety_score", road.SafetyScore)
	return road, nil
}

// UpdateRoad replaces the attributes of an existing record and rescores it.
// The name in the path wins over any name in the body.
func (s *Service) UpdateRoad(ctx context.Context, name string, in domain.RoadInput) (domain.RoadSafetyRecord, error) {
	in.RoadName = name
	road, err := domain.NewRoadSafetyRecord(in)
	if err != nil {
		return domain.RoadSafetyRecord{}, err
	}
	s.metrics.ScoresComputed.Inc()

	updated, err := s.roads.UpdateRoad(ctx, road)
	if err != nil {
		return domain.RoadSafetyRecord{}, fmt.Errorf("update road: %w", err)
	}
	s.logger.Info("road updated", "road_name", updated.RoadName, "safety_score", updated.SafetyScore)
	return updated, nil
}

// DeleteRoad removes a record. Hazard reports that reference it are kept.
func (s *Service) DeleteRoad(ctx context.Context, name string) error {
	if err := s.roads.DeleteRoad(ctx, strings.TrimSpace(name)); err != nil {
		return fmt.Errorf("delete road: %w", err)
	}
	s.logger.Info("road deleted", "road_name", name)
	return nil
}

// RoadScore returns the (recomputed) score of one road.
func (s *Service) RoadScore(ctx context.Context, name string) (ScoreView, error) {
	road, err := s.findRoad(ctx, name)
	if err != nil {
		return ScoreView{}, err
	}
	return ScoreView{
		RoadName:       road.RoadName,
		SafetyScore:    road.SafetyScore,
		Accidents:      road.AccidentCount,
		TrafficDensity: road.TrafficDensity,
	}, nil
}

// ListScores returns the score summary of every stored road.
func (s *Service) ListScores(ctx context.Context) ([]ScoreSummary, error) {
	roads, err := s.listRoads(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ScoreSummary, 0, len(roads))
	for _, r := range roads {
		out = append(out, ScoreSummary{
			RoadName:       r.RoadName,
			Accidents:      r.AccidentCount,
			RoadCondition:  r.RoadCondition,
			TrafficDensity: r.TrafficDensity,
			SafetyScore:    r.SafetyScore,
		})
	}
	return out, nil
}

// Recommendations classifies every stored road.
func (s *Service) Recommendations(ctx context.Context) ([]RoadRecommendation, error) {
	roads, err := s.listRoads(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoadRecommendation, 0, len(roads))
	for _, r := range roads {
		out = append(out, s.recommend(r))
	}
	return out, nil
}

// Recommendation classifies a single road.
func (s *Service) Recommendation(ctx context.Context, name string) (RoadRecommendation, error) {
	road, err := s.findRoad(ctx, name)
	if err != nil {
		return RoadRecommendation{}, err
	}
	return s.recommend(road), nil
}

// RoadRisk queries the risk model with the road's attributes and maps the
// probability to an action list. It never substitutes a default probability.
func (s *Service) RoadRisk(ctx context.Context, name string) (domain.RiskAssessment, error) {
	road, err := s.findRoad(ctx, name)
	if err != nil {
		return domain.RiskAssessment{}, err
	}

	if s.predictor == nil {
		s.metrics.RiskPredictions.WithLabelValues("unconfigured").Inc()
		return domain.RiskAssessment{}, fmt.Errorf("%w: risk model is not configured", domain.ErrUpstreamUnavailable)
	}

	p, err := s.predictor.Predict(ctx, road.Features())
	if err != nil {
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
		}
		return domain.RiskAssessment{}, fmt.Errorf("predict risk for %q: %w", road.RoadName, err)
	}

	assessment, err := domain.AssessRisk(road, p)
	if err != nil {
		// The model answered with something that is not a probability.
		return domain.RiskAssessment{}, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	s.metrics.RiskPredictionLevels.WithLabelValues(string(assessment.RiskLevel)).Inc()
	return assessment, nil
}

// ReportHazard validates, optionally geocodes, and stores a hazard report.
func (s *Service) ReportHazard(ctx context.Context, in domain.HazardInput) (domain.HazardReport, error) {
	report, err := domain.NewHazardReport(in)
	if err != nil {
		return domain.HazardReport{}, err
	}
	report = domain.EnrichHazardWithGeocoding(ctx, report, s.geocoder, s.logger)

	if err := s.hazards.CreateHazard(ctx, report); err != nil {
		return domain.HazardReport{}, fmt.Errorf("create hazard report: %w", err)
	}
	s.metrics.HazardsReported.Inc()
	s.logger.Info("hazard reported", "hazard_id", report.ID, "road_name", report.RoadName, "geo_source", report.GeoSource)
	return report, nil
}

// Hazards lists hazard reports, optionally filtered by road name.
func (s *Service) Hazards(ctx context.Context, roadName string) ([]domain.HazardReport, error) {
	hazards, err := s.hazards.ListHazards(ctx, strings.TrimSpace(roadName))
	if err != nil {
		return nil, fmt.Errorf("list hazards: %w", err)
	}
	return hazards, nil
}

// Analytics returns per-road data grouped by region for dashboard charts.
func (s *Service) Analytics(ctx context.Context) ([]domain.AnalyticsEntry, error) {
	roads, err := s.listRoads(ctx)
	if err != nil {
		return nil, err
	}
	return domain.BuildAnalytics(roads), nil
}

// Heatmap returns weighted points for every located hazard on a known road.
func (s *Service) Heatmap(ctx context.Context) ([]domain.HeatmapPoint, error) {
	roads, err := s.listRoads(ctx)
	if err != nil {
		return nil, err
	}
	hazards, err := s.Hazards(ctx, "")
	if err != nil {
		return nil, err
	}
	return domain.BuildHeatmap(hazards, roads), nil
}

// CheckReadiness reports whether the database is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.roads.Ping(ctx)
}

func (s *Service) recommend(road domain.RoadSafetyRecord) RoadRecommendation {
	rec := domain.Classify(float64(road.SafetyScore))
	s.metrics.RecommendationTiers.WithLabelValues(string(rec.Level)).Inc()
	return RoadRecommendation{
		RoadName:    road.RoadName,
		SafetyScore: road.SafetyScore,
		Level:       rec.Level,
		Action:      rec.Action,
	}
}

func (s *Service) findRoad(ctx context.Context, name string) (domain.RoadSafetyRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.RoadSafetyRecord{}, fmt.Errorf("%w: roadName is required", domain.ErrInvalidInput)
	}
	road, err := s.roads.FindRoadByName(ctx, name)
	if err != nil {
		return domain.RoadSafetyRecord{}, fmt.Errorf("find road: %w", err)
	}
	return s.rescore(road)
}

func (s *Service) listRoads(ctx context.Context) ([]domain.RoadSafetyRecord, error) {
	roads, err := s.roads.ListRoads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roads: %w", err)
	}
	for i := range roads {
		if roads[i], err = s.rescore(roads[i]); err != nil {
			return nil, err
		}
	}
	return roads, nil
}

// rescore serves the score derived from the stored attributes, logging when
// the persisted value disagrees.
func (s *Service) rescore(road domain.RoadSafetyRecord) (domain.RoadSafetyRecord, error) {
	stored := road.SafetyScore
	road, drifted, err := road.Rescore()
	if err != nil {
		return domain.RoadSafetyRecord{}, fmt.Errorf("rescore road %q: %w", road.RoadName, err)
	}
	s.metrics.ScoresComputed.Inc()
	if drifted {
		s.metrics.ScoreDrift.Inc()
		s.logger.Warn("stored safety score differs from computed score",
			"road_name", road.RoadName,
			"stored_score", stored,
			"computed_score", road.SafetyScore,
		)
	}
	return road, nil
}
