package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "road_safety"

// Metrics holds the Prometheus collectors for the API, the risk model client,
// geocoding, and the hazard relay.
type Metrics struct {
	// HTTP API.
	HTTPRequests        *prometheus.CounterVec   // labels: route, status
	HTTPRequestDuration *prometheus.HistogramVec // labels: route

	// Scoring.
	ScoresComputed      prometheus.Counter
	ScoreDrift          prometheus.Counter
	RecommendationTiers *prometheus.CounterVec // labels: tier={High,Medium,Low}
	HazardsReported     prometheus.Counter

	// Risk model.
	RiskPredictions      *prometheus.CounterVec // labels: outcome={success,error,unconfigured}
	RiskModelDuration    prometheus.Histogram
	RiskPredictionCache  *prometheus.CounterVec // labels: result={hit,miss}
	RiskPredictionLevels *prometheus.CounterVec // labels: level={high,moderate,low}

	// Hazard relay.
	HazardsExtracted        prometheus.Counter
	HazardsPublished        prometheus.Counter
	TransformErrors         prometheus.Counter
	RelayRunning            prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Geocoding.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates all service metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered Metrics so tests can build as many
// as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern and status code.",
		}, []string{"route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		ScoresComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scores_computed_total",
			Help:      "Total safety scores calculated.",
		}),
		ScoreDrift: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_drift_total",
			Help:      "Stored scores that disagreed with the recomputed value on read.",
		}),
		RecommendationTiers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Safety recommendations served by tier.",
		}, []string{"tier"}),
		HazardsReported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hazards_reported_total",
			Help:      "Total hazard reports accepted.",
		}),
		RiskPredictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_predictions_total",
			Help:      "Risk model calls by outcome.",
		}, []string{"outcome"}),
		RiskModelDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_model_duration_seconds",
			Help:      "Risk model request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		RiskPredictionCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_prediction_cache_total",
			Help:      "Risk prediction cache lookups by result.",
		}, []string{"result"}),
		RiskPredictionLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_levels_total",
			Help:      "Risk assessments served by risk level.",
		}, []string{"level"}),
		HazardsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_hazards_extracted_total",
			Help:      "Unpublished hazard reports read from the database.",
		}),
		HazardsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_hazards_published_total",
			Help:      "Hazard events written to the hazard topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_transform_errors_total",
			Help:      "Hazard reports that could not be serialized.",
		}),
		RelayRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "relay_running",
			Help:      "1 when the hazard relay is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_batch_size",
			Help:      "Number of hazard reports per relay batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "relay_batch_duration_seconds",
			Help:      "Duration of a complete relay extract-serialize-publish cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.ScoresComputed,
		m.ScoreDrift,
		m.RecommendationTiers,
		m.HazardsReported,
		m.RiskPredictions,
		m.RiskModelDuration,
		m.RiskPredictionCache,
		m.RiskPredictionLevels,
		m.HazardsExtracted,
		m.HazardsPublished,
		m.TransformErrors,
		m.RelayRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	}
}
