package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/road-safety-service/internal/domain"
	"github.com/couchcryptid/road-safety-service/internal/observability"
)

const defaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// Lookup kinds, used as the "method" metric label.
const (
	lookupForward = "forward"
	lookupReverse = "reverse"
)

// Feature types a road name may resolve to. Points of interest are excluded
// so a hazard is never pinned to a shop that shares the road's name.
const roadFeatureTypes = "address,street,place,locality"

// errorSnippetBytes caps how much of a failed response ends up in the error.
const errorSnippetBytes = 1024

// Client resolves hazard locations through the Mapbox Geocoding API. It
// implements domain.Geocoder.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Mapbox geocoding client.
func NewClient(token string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    defaultBaseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// ForwardGeocode locates the road a hazard was reported on. The region, when
// known, narrows the search.
func (c *Client) ForwardGeocode(ctx context.Context, roadName, region string) (domain.GeocodingResult, error) {
	return c.lookup(ctx, lookupForward, roadQuery(roadName, region), url.Values{"types": {roadFeatureTypes}})
}

// ReverseGeocode describes the place at a reported hazard position.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	return c.lookup(ctx, lookupReverse, lonLatPath(lat, lon), nil)
}

// roadQuery builds the free-text search for a road, e.g. "Ring Road, Delhi".
func roadQuery(roadName, region string) string {
	roadName = strings.TrimSpace(roadName)
	if region = strings.TrimSpace(region); region == "" {
		return roadName
	}
	return roadName + ", " + region
}

// lonLatPath formats a position the way Mapbox expects it: longitude first.
func lonLatPath(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lon, lat)
}

func (c *Client) endpoint(search string, extra url.Values) string {
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
	}
	for k, v := range extra {
		params[k] = v
	}
	return c.baseURL + "/" + url.PathEscape(search) + ".json?" + params.Encode()
}

// lookup runs one geocoding call and records its latency and outcome.
func (c *Client) lookup(ctx context.Context, kind, search string, extra url.Values) (domain.GeocodingResult, error) {
	start := time.Now()
	resp, err := c.get(ctx, kind, c.endpoint(search, extra))
	c.metrics.GeocodeAPIDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues(kind, "error").Inc()
		c.logger.Debug("hazard geocoding failed", "method", kind, "error", err)
		return domain.GeocodingResult{}, err
	}

	result := resp.best()
	outcome := "success"
	if result.FormattedAddress == "" {
		outcome = "empty"
	}
	c.metrics.GeocodeRequests.WithLabelValues(kind, outcome).Inc()
	return result, nil
}

func (c *Client) get(ctx context.Context, kind, endpoint string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return response{}, fmt.Errorf("build %s lookup: %w", kind, err)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("%s lookup: %w", kind, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(httpResp.Body, errorSnippetBytes))
		return response{}, fmt.Errorf("%s lookup: mapbox status %d: %s", kind, httpResp.StatusCode, snippet)
	}

	var out response
	if err := json.NewDecoder(httpResp.Body).Decode(&out); err != nil {
		return response{}, fmt.Errorf("decode %s lookup: %w", kind, err)
	}
	return out, nil
}

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}

// best converts the top-ranked feature. No features yields a zero result.
func (r response) best() domain.GeocodingResult {
	if len(r.Features) == 0 {
		return domain.GeocodingResult{}
	}
	f := r.Features[0]
	result := domain.GeocodingResult{
		FormattedAddress: f.PlaceName,
		PlaceName:        f.Text,
		Confidence:       f.Relevance,
	}
	if len(f.Center) == 2 {
		result.Lon, result.Lat = f.Center[0], f.Center[1]
	}
	return result
}
