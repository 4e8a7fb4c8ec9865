package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/pkg/trm"
)

type RouteRepo struct {
	db *pgxpool.Pool
}

func NewRouteRepo(db *pgxpool.Pool) *RouteRepo {
	return &RouteRepo{db: db}
}

// List loads every configured route. Geometry columns are JSONB and decode
// straight into the model types.
func (r *RouteRepo) List(ctx context.Context) (_ []models.Route, err error) {
	const op = "RouteRepo.List"
	defer observe(op, time.Now(), &err)

	rows, err := trm.TxorDB(ctx, r.db).Query(ctx, `
		SELECT id, name, description, waypoints, destination, danger_zones, speed_limit, vehicle_types
		FROM routes
		ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Route, error) {
		var rt models.Route
		err := row.Scan(&rt.ID, &rt.Name, &rt.Description, &rt.Waypoints, &rt.Destination, &rt.DangerZones,
			&rt.SpeedLimit, &rt.VehicleTypes)
		return rt, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
