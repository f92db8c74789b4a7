package safety_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/couchcryptid/road-safety-service/internal/observability"
	"github.com/couchcryptid/road-safety-service/internal/safety"
	"github.com/couchcryptid/road-safety-service/internal/safety/safetytest"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ringRoad    = "Ring Road"
	mathuraRoad = "Mathura Road"
)

type fixture struct {
	svc       *safety.Service
	roads     *safetytest.RoadStore
	hazards   *safetytest.HazardStore
	predictor *safetytest.Predictor
	metrics   *observability.Metrics
	logs      *bytes.Buffer
}

func newFixture(t *testing.T, seed ...domain.RoadSafetyRecord) *fixture {
	t.Helper()
	fake := clockwork.NewFakeClockAt(time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC))
	domain.SetClock(fake)
	t.Cleanup(func() { domain.SetClock(nil) })

	f := &fixture{
		roads:     safetytest.NewRoadStore(seed...),
		hazards:   safetytest.NewHazardStore(),
		predictor: &safetytest.Predictor{P: 0.5},
		metrics:   observability.NewMetricsForTesting(),
		logs:      &bytes.Buffer{},
	}
	f.svc = safety.NewService(safety.Deps{
		Roads:     f.roads,
		Hazards:   f.hazards,
		Predictor: f.predictor,
		Logger:    slog.New(slog.NewTextHandler(f.logs, nil)),
		Metrics:   f.metrics,
	})
	return f
}

func ringRoadInput() domain.RoadInput {
	return domain.RoadInput{
		RoadName:       ringRoad,
		Region:         "South Delhi",
		AccidentCount:  4,
		TrafficDensity: 300,
		RoadCondition:  "Average",
		Lighting:       "Dim",
	}
}

func ptr[T any](v T) *T { return &v }

func TestService_AddRoad(t *testing.T) {
	f := newFixture(t)

	road, err := f.svc.AddRoad(context.Background(), ringRoadInput())
	require.NoError(t, err)
	assert.Equal(t, 72, road.SafetyScore)

	stored, err := f.roads.FindRoadByName(context.Background(), ringRoad)
	require.NoError(t, err)
	assert.Equal(t, road, stored)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.ScoresComputed), 0)
}

func TestService_AddRoad_MatchingScoreAccepted(t *testing.T) {
	f := newFixture(t)
	in := ringRoadInput()
	in.SafetyScore = ptr(72.0)

	_, err := f.svc.AddRoad(context.Background(), in)
	require.NoError(t, err)
}

func TestService_AddRoad_MismatchedScoreRejected(t *testing.T) {
	f := newFixture(t)
	in := ringRoadInput()
	in.SafetyScore = ptr(99.0)

	_, err := f.svc.AddRoad(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.roads.FindRoadByName(context.Background(), ringRoad)
	require.ErrorIs(t, err, domain.ErrNotFound, "nothing may be persisted")
}

func TestService_AddRoad_Duplicate(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddRoad(context.Background(), ringRoadInput())
	require.NoError(t, err)

	_, err = f.svc.AddRoad(context.Background(), ringRoadInput())
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestService_AddRoad_InvalidInputs(t *testing.T) {
	tests := map[string]func(*domain.RoadInput){
		"empty name":         func(in *domain.RoadInput) { in.RoadName = "   " },
		"negative accidents": func(in *domain.RoadInput) { in.AccidentCount = -1 },
		"negative density":   func(in *domain.RoadInput) { in.TrafficDensity = -5 },
		"unknown condition":  func(in *domain.RoadInput) { in.RoadCondition = "Excellent" },
		"unknown lighting":   func(in *domain.RoadInput) { in.Lighting = "Neon" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			in := ringRoadInput()
			mutate(&in)

			_, err := f.svc.AddRoad(context.Background(), in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestService_UpdateRoad_PathNameWinsAndRescores(t *testing.T) {
	f := newFixture(t)
	original, err := f.svc.AddRoad(context.Background(), ringRoadInput())
	require.NoError(t, err)

	in := ringRoadInput()
	in.RoadName = "Some Other Road"
	in.AccidentCount = 0
	in.RoadCondition = "Good"
	in.TrafficDensity = 0

	updated, err := f.svc.UpdateRoad(context.Background(), ringRoad, in)
	require.NoError(t, err)

	assert.Equal(t, ringRoad, updated.RoadName)
	assert.Equal(t, 97, updated.SafetyScore)
	assert.Equal(t, original.CreatedAt, updated.CreatedAt)

	_, err = f.roads.FindRoadByName(context.Background(), "Some Other Road")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_UpdateRoad_Missing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateRoad(context.Background(), ringRoad, ringRoadInput())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_DeleteRoad(t *testing.T) {
	f := newFixture(t, mustRoadNoClock(ringRoadInput()))

	require.NoError(t, f.svc.DeleteRoad(context.Background(), ringRoad))
	require.ErrorIs(t, f.svc.DeleteRoad(context.Background(), ringRoad), domain.ErrNotFound)
}

func TestService_RoadScore(t *testing.T) {
	f := newFixture(t, mustRoadNoClock(ringRoadInput()))

	view, err := f.svc.RoadScore(context.Background(), " Ring Road ")
	require.NoError(t, err)

	assert.Equal(t, safety.ScoreView{RoadName: ringRoad, SafetyScore: 72, Accidents: 4, TrafficDensity: 300}, view)
}

func TestService_RoadScore_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RoadScore(context.Background(), "Nowhere Lane")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_RoadScore_EmptyName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RoadScore(context.Background(), " ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestService_StoredScoreDriftServesRecomputed(t *testing.T) {
	road := mustRoadNoClock(ringRoadInput())
	road.SafetyScore = 15
	f := newFixture(t)
	f.roads.Put(road)

	view, err := f.svc.RoadScore(context.Background(), ringRoad)
	require.NoError(t, err)

	assert.Equal(t, 72, view.SafetyScore)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.ScoreDrift), 0)
	assert.Contains(t, f.logs.String(), "stored safety score differs")
}

func TestService_ListScores(t *testing.T) {
	f := newFixture(t,
		mustRoadNoClock(ringRoadInput()),
		mustRoadNoClock(domain.RoadInput{RoadName: mathuraRoad, AccidentCount: 20, TrafficDensity: 1000, RoadCondition: "Poor"}),
	)

	scores, err := f.svc.ListScores(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []safety.ScoreSummary{
		{RoadName: mathuraRoad, Accidents: 20, RoadCondition: domain.RoadConditionPoor, TrafficDensity: 1000, SafetyScore: 9},
		{RoadName: ringRoad, Accidents: 4, RoadCondition: domain.RoadConditionAverage, TrafficDensity: 300, SafetyScore: 72},
	}, scores)
}

func TestService_ListScores_Empty(t *testing.T) {
	f := newFixture(t)

	scores, err := f.svc.ListScores(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, scores)
	assert.Empty(t, scores)
}

func TestService_Recommendations(t *testing.T) {
	f := newFixture(t,
		mustRoadNoClock(domain.RoadInput{RoadName: "Expressway", RoadCondition: "Good"}),
		mustRoadNoClock(ringRoadInput()),
		mustRoadNoClock(domain.RoadInput{RoadName: mathuraRoad, AccidentCount: 20, TrafficDensity: 1000, RoadCondition: "Poor"}),
	)

	recs, err := f.svc.Recommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "Expressway", recs[0].RoadName)
	assert.Equal(t, 97, recs[0].SafetyScore)
	assert.Equal(t, domain.SafetyLevelHigh, recs[0].Level)
	assert.Equal(t, domain.SafetyLevelLow, recs[1].Level)
	assert.Equal(t, domain.SafetyLevelMedium, recs[2].Level)
	assert.Equal(t, "Moderate safety. Consider improving road conditions and traffic management.", recs[2].Action)
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.RecommendationTiers.WithLabelValues("Low")), 0)
}

func TestService_Recommendation_Single(t *testing.T) {
	f := newFixture(t, mustRoadNoClock(ringRoadInput()))

	rec, err := f.svc.Recommendation(context.Background(), ringRoad)
	require.NoError(t, err)
	assert.Equal(t, domain.SafetyLevelMedium, rec.Level)

	_, err = f.svc.Recommendation(context.Background(), "Nowhere Lane")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_RoadRisk(t *testing.T) {
	f := newFixture(t, mustRoadNoClock(ringRoadInput()))
	f.predictor.P = 0.82

	risk, err := f.svc.RoadRisk(context.Background(), ringRoad)
	require.NoError(t, err)

	assert.Equal(t, ringRoad, risk.RoadName)
	assert.Equal(t, 72, risk.SafetyScore)
	assert.InDelta(t, 0.82, risk.Probability, 0)
	assert.Equal(t, domain.RiskLevelHigh, risk.RiskLevel)
	assert.Len(t, risk.Recommendations, 4)

	require.Len(t, f.predictor.Features, 1)
	assert.Equal(t, domain.RiskFeatures{
		TrafficDensity: 300,
		RoadCondition:  domain.RoadConditionAverage,
		Lighting:       domain.LightingDim,
	}, f.predictor.Features[0])
}

func TestService_RoadRisk_PredictorFailure(t *testing.T) {
	f := newFixture(t, mustRoadNoClock(ringRoadInput()))
	f.predictor.Err = errors.New("connection refused")

	_, err := f.svc.RoadRisk(context.Background(), ringRoad)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestService_RoadRisk_InvalidProbabilityIsUpstreamFault(t *testing.T) {
	f := newFixture(t, mustRoadNoClock(ringRoadInput()))
	f.predictor.P = 1.7

	_, err := f.svc.RoadRisk(context.Background(), ringRoad)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestService_RoadRisk_Unconfigured(t *testing.T) {
	roads := safetytest.NewRoadStore(mustRoadNoClock(ringRoadInput()))
	m := observability.NewMetricsForTesting()
	svc := safety.NewService(safety.Deps{
		Roads:   roads,
		Hazards: safetytest.NewHazardStore(),
		Logger:  slog.New(slog.DiscardHandler),
		Metrics: m,
	})

	_, err := svc.RoadRisk(context.Background(), ringRoad)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RiskPredictions.WithLabelValues("unconfigured")), 0)
}

func TestService_RoadRisk_NotFoundBeforePredict(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RoadRisk(context.Background(), "Nowhere Lane")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, f.predictor.Features)
}

func TestService_ReportHazard(t *testing.T) {
	f := newFixture(t)

	report, err := f.svc.ReportHazard(context.Background(), domain.HazardInput{
		RoadName:    ringRoad,
		Description: "Deep pothole near the flyover",
		Latitude:    ptr(28.57),
		Longitude:   ptr(77.25),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, time.Date(2024, time.March, 4, 9, 30, 0, 0, time.UTC), report.ReportedAt)
	assert.Empty(t, report.GeoSource, "no geocoder configured")

	stored, err := f.svc.Hazards(context.Background(), ringRoad)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, report, stored[0])
	assert.InDelta(t, 1, testutil.ToFloat64(f.metrics.HazardsReported), 0)
}

func TestService_ReportHazard_SingleCoordinateRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ReportHazard(context.Background(), domain.HazardInput{
		RoadName:    ringRoad,
		Description: "Oil spill",
		Latitude:    ptr(28.57),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, err := f.svc.Hazards(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestService_ReportHazard_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.hazards.Err = errors.New("disk full")

	_, err := f.svc.ReportHazard(context.Background(), domain.HazardInput{RoadName: ringRoad, Description: "Oil spill"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create hazard report")
}

func TestService_AnalyticsAndHeatmap(t *testing.T) {
	f := newFixture(t,
		mustRoadNoClock(ringRoadInput()),
		mustRoadNoClock(domain.RoadInput{RoadName: mathuraRoad, AccidentCount: 20, TrafficDensity: 1000, RoadCondition: "Poor"}),
	)
	ctx := context.Background()

	_, err := f.svc.ReportHazard(ctx, domain.HazardInput{RoadName: ringRoad, Description: "Pothole", Latitude: ptr(28.6), Longitude: ptr(77.2)})
	require.NoError(t, err)
	_, err = f.svc.ReportHazard(ctx, domain.HazardInput{RoadName: mathuraRoad, Description: "No coords"})
	require.NoError(t, err)
	_, err = f.svc.ReportHazard(ctx, domain.HazardInput{RoadName: "Unknown Lane", Description: "Stray cattle", Latitude: ptr(28.5), Longitude: ptr(77.1)})
	require.NoError(t, err)

	analytics, err := f.svc.Analytics(ctx)
	require.NoError(t, err)
	require.Len(t, analytics, 2)
	assert.Equal(t, mathuraRoad, analytics[0].Region, "empty region falls back to the road name")
	assert.Equal(t, "South Delhi", analytics[1].Region)

	heat, err := f.svc.Heatmap(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.HeatmapPoint{
		{RoadName: ringRoad, Latitude: 28.6, Longitude: 77.2, SafetyScore: 72, Weight: 28},
	}, heat)
}

func TestService_CheckReadiness(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.CheckReadiness(context.Background()))

	f.roads.Err = errors.New("connection refused")
	require.Error(t, f.svc.CheckReadiness(context.Background()))
}

// mustRoadNoClock builds a scored record for seeding stores before the
// fixture freezes the clock.
func mustRoadNoClock(in domain.RoadInput) domain.RoadSafetyRecord {
	r, err := domain.NewRoadSafetyRecord(in)
	if err != nil {
		panic(err)
	}
	return r
}
