package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/road-safety-service/internal/domain"
)

// HazardRepository stores append-only hazard reports and tracks which have
// been published to the event stream.
type HazardRepository struct {
	pool *pgxpool.Pool
}

func NewHazardRepository(pool *pgxpool.Pool) *HazardRepository {
	return &HazardRepository{pool: pool}
}

const hazardColumns = `id, road_name, description, latitude, longitude, region,
	formatted_address, place_name, geo_confidence, geo_source, reported_at`

// CreateHazard inserts a report as unpublished.
func (r *HazardRepository) CreateHazard(ctx context.Context, h domain.HazardReport) error {
	var lat, lon *float64
	if h.HasCoords() {
		lat, lon = &h.Latitude, &h.Longitude
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO hazard_reports (`+hazardColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, h.ID, h.RoadName, h.Description, lat, lon, h.Region,
		h.FormattedAddress, h.PlaceName, h.GeoConfidence, h.GeoSource, h.ReportedAt)
	if err != nil {
		return fmt.Errorf("insert hazard report: %w", err)
	}
	return nil
}

// ListHazards returns reports oldest first, filtered by road name when
// roadName is non-empty.
func (r *HazardRepository) ListHazards(ctx context.Context, roadName string) ([]domain.HazardReport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+hazardColumns+` FROM hazard_reports
		WHERE $1 = '' OR road_name = $1
		ORDER BY reported_at, id
	`, roadName)
	if err != nil {
		return nil, fmt.Errorf("query hazard reports: %w", err)
	}
	return collectHazards(rows)
}

// ExtractBatch returns up to batchSize unpublished reports, oldest first.
// Each report's Commit marks it published.
func (r *HazardRepository) ExtractBatch(ctx context.Context, batchSize int) ([]domain.PendingHazard, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+hazardColumns+` FROM hazard_reports
		WHERE published_at IS NULL
		ORDER BY reported_at, id
		LIMIT $1
	`, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query unpublished hazards: %w", err)
	}
	reports, err := collectHazards(rows)
	if err != nil {
		return nil, err
	}

	pending := make([]domain.PendingHazard, 0, len(reports))
	for _, h := range reports {
		id := h.ID
		pending = append(pending, domain.PendingHazard{
			Report: h,
			Commit: func(ctx context.Context) error { return r.markPublished(ctx, id) },
		})
	}
	return pending, nil
}

func (r *HazardRepository) markPublished(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE hazard_reports SET published_at = now()
		WHERE id = $1 AND published_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("mark hazard %s published: %w", id, err)
	}
	return nil
}

func collectHazards(rows pgx.Rows) ([]domain.HazardReport, error) {
	defer rows.Close()

	reports := []domain.HazardReport{}
	for rows.Next() {
		var (
			h        domain.HazardReport
			lat, lon *float64
		)
		if err := rows.Scan(&h.ID, &h.RoadName, &h.Description, &lat, &lon, &h.Region,
			&h.FormattedAddress, &h.PlaceName, &h.GeoConfidence, &h.GeoSource, &h.ReportedAt); err != nil {
			return nil, fmt.Errorf("scan hazard report: %w", err)
		}
		if lat != nil && lon != nil {
			h.Latitude, h.Longitude = *lat, *lon
		}
		h.ReportedAt = h.ReportedAt.UTC()
		reports = append(reports, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hazard reports: %w", err)
	}
	return reports, nil
}
