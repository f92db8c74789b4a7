// Package riskmodel talks to the external accident-risk prediction service.
package riskmodel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/couchcryptid/road-safety-service/internal/observability"
)

// Client implements domain.RiskPredictor against a model server exposing
// POST /predict.
type Client struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a risk model client for the server at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		metrics:    metrics,
		logger:     logger,
	}
}

type predictRequest struct {
	Instances []domain.RiskFeatures `json:"instances"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

// Predict returns the model's accident probability for one road. Any failure
// to obtain a usable probability wraps domain.ErrUpstreamUnavailable.
func (c *Client) Predict(ctx context.Context, features domain.RiskFeatures) (float64, error) {
	start := time.Now()
	p, err := c.predict(ctx, features)
	c.metrics.RiskModelDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.RiskPredictions.WithLabelValues("error").Inc()
		c.logger.Warn("risk model prediction failed", "error", err)
		return 0, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	c.metrics.RiskPredictions.WithLabelValues("success").Inc()
	return p, nil
}

func (c *Client) predict(ctx context.Context, features domain.RiskFeatures) (float64, error) {
	body, err := json.Marshal(predictRequest{Instances: []domain.RiskFeatures{features}})
	if err != nil {
		return 0, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("risk model request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, fmt.Errorf("risk model error: status %d: %s", resp.StatusCode, msg)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Predictions) == 0 {
		return 0, fmt.Errorf("risk model returned no predictions")
	}

	p := out.Predictions[0]
	if math.IsNaN(p) || p < 0 || p > 1 {
		return 0, fmt.Errorf("risk model returned probability %g outside [0,1]", p)
	}
	return p, nil
}
