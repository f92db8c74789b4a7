package riskmodel

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/couchcryptid/road-safety-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingPredictor struct {
	calls int
	p     float64
	err   error
}

func (m *countingPredictor) Predict(_ context.Context, _ domain.RiskFeatures) (float64, error) {
	m.calls++
	return m.p, m.err
}

func TestCachedPredictor_Hit(t *testing.T) {
	inner := &countingPredictor{p: 0.55}
	m := observability.NewMetricsForTesting()
	cached := NewCachedPredictor(inner, 10, m)

	p1, err := cached.Predict(context.Background(), testFeatures)
	require.NoError(t, err)
	p2, err := cached.Predict(context.Background(), testFeatures)
	require.NoError(t, err)

	assert.InDelta(t, 0.55, p1, 0)
	assert.InDelta(t, p1, p2, 0)
	assert.Equal(t, 1, inner.calls)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RiskPredictionCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RiskPredictionCache.WithLabelValues("miss")), 0)
}

func TestCachedPredictor_DistinctFeaturesMiss(t *testing.T) {
	inner := &countingPredictor{p: 0.3}
	cached := NewCachedPredictor(inner, 10, observability.NewMetricsForTesting())

	other := testFeatures
	other.Lighting = domain.LightingDark

	_, _ = cached.Predict(context.Background(), testFeatures)
	_, _ = cached.Predict(context.Background(), other)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedPredictor_ErrorsNotCached(t *testing.T) {
	inner := &countingPredictor{err: fmt.Errorf("%w: connection refused", domain.ErrUpstreamUnavailable)}
	cached := NewCachedPredictor(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Predict(context.Background(), testFeatures)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	inner.err = nil
	inner.p = 0.9
	p, err := cached.Predict(context.Background(), testFeatures)
	require.NoError(t, err)
	assert.InDelta(t, 0.9, p, 0)
	assert.Equal(t, 2, inner.calls)
	assert.False(t, errors.Is(err, domain.ErrUpstreamUnavailable))
}
