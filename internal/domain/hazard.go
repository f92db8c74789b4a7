package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxHazardDescriptionLength = 2000

// Geocoding outcomes recorded on a hazard report.
const (
	GeoSourceForward  = "forward"
	GeoSourceReverse  = "reverse"
	GeoSourceOriginal = "original"
	GeoSourceFailed   = "failed"
)

// HazardInput is a user-submitted hazard observation before validation.
// Latitude and Longitude must be supplied together or not at all.
type HazardInput struct {
	RoadName    string   `json:"roadName"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Region      string   `json:"region,omitempty"`
}

// HazardReport is an append-only point observation of a road hazard. The road
// is referenced by name and does not have to exist.
type HazardReport struct {
	ID          string    `json:"id"`
	RoadName    string    `json:"roadName"`
	Description string    `json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Region      string    `json:"region,omitempty"`
	ReportedAt  time.Time `json:"reportedAt"`

	// Geocoding enrichment fields.
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	PlaceName        string  `json:"placeName,omitempty"`
	GeoConfidence    float64 `json:"geoConfidence,omitempty"`
	GeoSource        string  `json:"geoSource,omitempty"`
}

// HasCoords reports whether the report carries a coordinate pair. (0,0) is
// treated as absent.
func (h HazardReport) HasCoords() bool {
	return h.Latitude != 0 || h.Longitude != 0
}

// NewHazardReport validates the input and assigns an ID and report time.
func NewHazardReport(in HazardInput) (HazardReport, error) {
	name, err := normalizeRoadName(in.RoadName)
	if err != nil {
		return HazardReport{}, err
	}

	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return HazardReport{}, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(desc) > maxHazardDescriptionLength {
		return HazardReport{}, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, maxHazardDescriptionLength)
	}

	report := HazardReport{
		ID:          uuid.NewString(),
		RoadName:    name,
		Description: desc,
		Region:      strings.TrimSpace(in.Region),
		ReportedAt:  clock.Now().UTC(),
	}

	switch {
	case in.Latitude == nil && in.Longitude == nil:
	case in.Latitude == nil || in.Longitude == nil:
		return HazardReport{}, fmt.Errorf("%w: latitude and longitude must be given together", ErrInvalidInput)
	default:
		lat, lon := *in.Latitude, *in.Longitude
		if !validFinite(lat) || lat < -90 || lat > 90 {
			return HazardReport{}, fmt.Errorf("%w: latitude %g outside [-90,90]", ErrInvalidInput, lat)
		}
		if !validFinite(lon) || lon < -180 || lon > 180 {
			return HazardReport{}, fmt.Errorf("%w: longitude %g outside [-180,180]", ErrInvalidInput, lon)
		}
		report.Latitude = lat
		report.Longitude = lon
	}

	return report, nil
}
