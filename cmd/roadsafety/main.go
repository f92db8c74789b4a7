package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/road-safety-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/road-safety-service/internal/adapter/kafka"
	"github.com/couchcryptid/road-safety-service/internal/adapter/mapbox"
	"github.com/couchcryptid/road-safety-service/internal/adapter/postgres"
	"github.com/couchcryptid/road-safety-service/internal/adapter/riskmodel"
	"github.com/couchcryptid/road-safety-service/internal/config"
	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/couchcryptid/road-safety-service/internal/observability"
	"github.com/couchcryptid/road-safety-service/internal/pipeline"
	"github.com/couchcryptid/road-safety-service/internal/safety"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			logger.Error("database migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	roads := postgres.NewRoadRepository(pool)
	hazards := postgres.NewHazardRepository(pool)

	// Risk model is optional; without it the risk endpoint answers 503.
	var predictor domain.RiskPredictor
	if cfg.RiskModelURL != "" {
		client := riskmodel.NewClient(cfg.RiskModelURL, cfg.RiskModelTimeout, logger, metrics)
		predictor = riskmodel.NewCachedPredictor(client, cfg.RiskModelCacheSize, metrics)
		logger.Info("risk model enabled", "url", cfg.RiskModelURL, "cache_size", cfg.RiskModelCacheSize)
	} else {
		logger.Warn("risk model disabled, RISK_MODEL_URL is not set")
	}

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	svc := safety.NewService(safety.Deps{
		Roads:     roads,
		Hazards:   hazards,
		Predictor: predictor,
		Geocoder:  geocoder,
		Logger:    logger,
		Metrics:   metrics,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, logger, metrics)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start the hazard relay when Kafka is configured.
	var writer *kafkaadapter.Writer
	relayDone := make(chan struct{})
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		p := pipeline.New(hazards, pipeline.NewTransformer(), writer, logger, metrics, cfg.BatchSize, cfg.BatchFlushInterval)
		go func() {
			defer close(relayDone)
			if err := p.Run(ctx); err != nil {
				logger.Error("hazard relay error", "error", err)
			}
		}()
	} else {
		close(relayDone)
		logger.Info("hazard relay disabled")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	select {
	case <-relayDone:
	case <-shutdownCtx.Done():
		logger.Warn("hazard relay did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
