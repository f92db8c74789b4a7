package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/couchcryptid/road-safety-service/internal/observability"
	"github.com/couchcryptid/road-safety-service/internal/safety"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service is the application layer behind the API.
type Service interface {
	AddRoad(ctx context.Context, in domain.RoadInput) (domain.RoadSafetyRecord, error)
	UpdateRoad(ctx context.Context, name string, in domain.RoadInput) (domain.RoadSafetyRecord, error)
	DeleteRoad(ctx context.Context, name string) error
	RoadScore(ctx context.Context, name string) (safety.ScoreView, error)
	ListScores(ctx context.Context) ([]safety.ScoreSummary, error)
	Recommendations(ctx context.Context) ([]safety.RoadRecommendation, error)
	Recommendation(ctx context.Context, name string) (safety.RoadRecommendation, error)
	RoadRisk(ctx context.Context, name string) (domain.RiskAssessment, error)
	ReportHazard(ctx context.Context, in domain.HazardInput) (domain.HazardReport, error)
	Hazards(ctx context.Context, roadName string) ([]domain.HazardReport, error)
	Analytics(ctx context.Context) ([]domain.AnalyticsEntry, error)
	Heatmap(ctx context.Context) ([]domain.HeatmapPoint, error)
	CheckReadiness(ctx context.Context) error
}

// Server exposes the road safety API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        Service
	schemas    *requestSchemas
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates an HTTP server with the API routes, /healthz, /readyz, and /metrics.
func NewServer(addr string, svc Service, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		svc:     svc,
		schemas: mustCompileSchemas(),
		logger:  logger,
		metrics: metrics,
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.withRecovery(s.withMetrics(s.withLogging(mux))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/safety/road/{roadName}", s.handleRoadRisk)
	mux.HandleFunc("GET /api/safety/score/{roadName}", s.handleRoadScore)
	mux.HandleFunc("GET /api/safety-scores", s.handleListScores)
	mux.HandleFunc("GET /api/safety/recommendations", s.handleRecommendations)
	mux.HandleFunc("GET /api/safety/recommendations/{roadName}", s.handleRecommendation)
	mux.HandleFunc("POST /api/add-road", s.handleAddRoad)
	mux.HandleFunc("PUT /api/safety/roads/{roadName}", s.handleUpdateRoad)
	mux.HandleFunc("DELETE /api/safety/roads/{roadName}", s.handleDeleteRoad)
	mux.HandleFunc("POST /api/report-hazard", s.handleReportHazard)
	mux.HandleFunc("GET /api/hazards", s.handleListHazards)
	mux.HandleFunc("GET /api/safety/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/safety/heatmap", s.handleHeatmap)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
