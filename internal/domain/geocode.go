package domain

import (
	"context"
	"log/slog"
)

// EnrichHazardWithGeocoding attempts to fill in location details for a hazard
// report. Reports with coordinates are reverse geocoded; reports without are
// forward geocoded from the road name and region. If geocoder is nil the
// report is returned unchanged. Failures never reject the report: GeoSource
// records what happened.
func EnrichHazardWithGeocoding(ctx context.Context, report HazardReport, geocoder Geocoder, logger *slog.Logger) HazardReport {
	if geocoder == nil {
		return report
	}

	if report.HasCoords() {
		result, err := geocoder.ReverseGeocode(ctx, report.Latitude, report.Longitude)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"hazard_id", report.ID,
				"lat", report.Latitude,
				"lon", report.Longitude,
				"error", err,
			)
			report.GeoSource = GeoSourceFailed
			return report
		}
		if result.FormattedAddress != "" {
			report.FormattedAddress = result.FormattedAddress
			report.PlaceName = result.PlaceName
			report.GeoConfidence = result.Confidence
			report.GeoSource = GeoSourceReverse
			return report
		}
		report.GeoSource = GeoSourceOriginal
		return report
	}

	result, err := geocoder.ForwardGeocode(ctx, report.RoadName, report.Region)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"hazard_id", report.ID,
			"road_name", report.RoadName,
			"region", report.Region,
			"error", err,
		)
		report.GeoSource = GeoSourceFailed
		return report
	}
	if result.Lat != 0 || result.Lon != 0 {
		report.Latitude = result.Lat
		report.Longitude = result.Lon
		report.FormattedAddress = result.FormattedAddress
		report.PlaceName = result.PlaceName
		report.GeoConfidence = result.Confidence
		report.GeoSource = GeoSourceForward
		return report
	}

	report.GeoSource = GeoSourceOriginal
	return report
}
