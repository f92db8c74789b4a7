package riskmodel

import (
	"context"
	"fmt"

	"github.com/couchcryptid/road-safety-service/internal/cache"
	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/couchcryptid/road-safety-service/internal/observability"
)

// CachedPredictor memoizes successful predictions by feature vector.
type CachedPredictor struct {
	inner   domain.RiskPredictor
	cache   *cache.LRU[float64]
	metrics *observability.Metrics
}

// NewCachedPredictor creates a cache decorator around a predictor.
func NewCachedPredictor(inner domain.RiskPredictor, maxEntries int, metrics *observability.Metrics) *CachedPredictor {
	return &CachedPredictor{
		inner:   inner,
		cache:   cache.New[float64](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedPredictor) Predict(ctx context.Context, features domain.RiskFeatures) (float64, error) {
	key := fmt.Sprintf("%g|%s|%s|%s", features.TrafficDensity, features.RoadCondition, features.Lighting, features.PedestrianInfrastructure)
	if p, ok := c.cache.Get(key); ok {
		c.metrics.RiskPredictionCache.WithLabelValues("hit").Inc()
		return p, nil
	}
	c.metrics.RiskPredictionCache.WithLabelValues("miss").Inc()

	p, err := c.inner.Predict(ctx, features)
	if err != nil {
		return 0, err
	}
	c.cache.Put(key, p)
	return p, nil
}
