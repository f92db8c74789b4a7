package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/couchcryptid/road-safety-service/internal/domain"
)

// RoadRepository stores road safety records keyed by road name.
type RoadRepository struct {
	pool *pgxpool.Pool
}

func NewRoadRepository(pool *pgxpool.Pool) *RoadRepository {
	return &RoadRepository{pool: pool}
}

const roadColumns = `road_name, region, accident_count, traffic_density, road_condition,
	lighting, pedestrian_infrastructure, safety_score, created_at, updated_at`

// CreateRoad inserts a new record. A record with the same name yields
// domain.ErrConflict.
func (r *RoadRepository) CreateRoad(ctx context.Context, road domain.RoadSafetyRecord) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO roads (`+roadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (road_name) DO NOTHING
	`, road.RoadName, road.Region, road.AccidentCount, road.TrafficDensity,
		string(road.RoadCondition), string(road.Lighting), string(road.PedestrianInfrastructure),
		road.SafetyScore, road.CreatedAt, road.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert road: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: road %q already exists", domain.ErrConflict, road.RoadName)
	}
	return nil
}

// UpdateRoad replaces the attributes and score of an existing record and
// returns it with its original creation time.
func (r *RoadRepository) UpdateRoad(ctx context.Context, road domain.RoadSafetyRecord) (domain.RoadSafetyRecord, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE roads SET
			region = $2,
			accident_count = $3,
			traffic_density = $4,
			road_condition = $5,
			lighting = $6,
			pedestrian_infrastructure = $7,
			safety_score = $8,
			updated_at = $9
		WHERE road_name = $1
		RETURNING `+roadColumns,
		road.RoadName, road.Region, road.AccidentCount, road.TrafficDensity,
		string(road.RoadCondition), string(road.Lighting), string(road.PedestrianInfrastructure),
		road.SafetyScore, road.UpdatedAt)

	updated, err := scanRoad(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RoadSafetyRecord{}, fmt.Errorf("%w: road %q", domain.ErrNotFound, road.RoadName)
		}
		return domain.RoadSafetyRecord{}, fmt.Errorf("update road: %w", err)
	}
	return updated, nil
}

// DeleteRoad removes a record. Hazard reports referencing the road are kept.
func (r *RoadRepository) DeleteRoad(ctx context.Context, name string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roads WHERE road_name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete road: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: road %q", domain.ErrNotFound, name)
	}
	return nil
}

// FindRoadByName returns domain.ErrNotFound when no record matches.
func (r *RoadRepository) FindRoadByName(ctx context.Context, name string) (domain.RoadSafetyRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roadColumns+` FROM roads WHERE road_name = $1`, name)
	road, err := scanRoad(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RoadSafetyRecord{}, fmt.Errorf("%w: road %q", domain.ErrNotFound, name)
		}
		return domain.RoadSafetyRecord{}, fmt.Errorf("query road: %w", err)
	}
	return road, nil
}

// ListRoads returns every record ordered by name.
func (r *RoadRepository) ListRoads(ctx context.Context) ([]domain.RoadSafetyRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roadColumns+` FROM roads ORDER BY road_name`)
	if err != nil {
		return nil, fmt.Errorf("query roads: %w", err)
	}
	defer rows.Close()

	roads := []domain.RoadSafetyRecord{}
	for rows.Next() {
		road, err := scanRoad(rows)
		if err != nil {
			return nil, fmt.Errorf("scan road: %w", err)
		}
		roads = append(roads, road)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roads: %w", err)
	}
	return roads, nil
}

// Ping reports whether the database is reachable.
func (r *RoadRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

func scanRoad(row pgx.Row) (domain.RoadSafetyRecord, error) {
	var (
		road                              domain.RoadSafetyRecord
		condition, lighting, pedestrianIn string
	)
	err := row.Scan(&road.RoadName, &road.Region, &road.AccidentCount, &road.TrafficDensity,
		&condition, &lighting, &pedestrianIn, &road.SafetyScore, &road.CreatedAt, &road.UpdatedAt)
	if err != nil {
		return domain.RoadSafetyRecord{}, err
	}
	road.RoadCondition = domain.RoadCondition(condition)
	road.Lighting = domain.Lighting(lighting)
	road.PedestrianInfrastructure = domain.PedestrianInfrastructure(pedestrianIn)
	road.CreatedAt = road.CreatedAt.UTC()
	road.UpdatedAt = road.UpdatedAt.UTC()
	return road, nil
}
