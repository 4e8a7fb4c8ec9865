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

type LocationHistoryRepo struct {
	db *pgxpool.Pool
}

func NewLocationHistoryRepo(db *pgxpool.Pool) *LocationHistoryRepo {
	return &LocationHistoryRepo{db: db}
}

var historyColumns = []string{
	"driver_id",
	"delivery_id",
	"latitude",
	"longitude",
	"speed",
	"heading",
	"recorded_at",
}

// InsertHistory copies a batch of points into location_history.
func (r *LocationHistoryRepo) InsertHistory(ctx context.Context, points []models.HistoryPoint) (err error) {
	const op = "LocationHistoryRepo.InsertHistory"
	if len(points) == 0 {
		return nil
	}
	defer observe(op, time.Now(), &err)

	_, err = trm.TxorDB(ctx, r.db).CopyFrom(ctx,
		pgx.Identifier{"location_history"},
		historyColumns,
		pgx.CopyFromSlice(len(points), func(i int) ([]any, error) {
			p := points[i]
			return []any{p.DriverID, p.DeliveryID, p.Latitude, p.Longitude, p.Speed, p.Heading, p.Timestamp}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("%s: copy %d rows: %w", op, len(points), err)
	}
	return nil
}

// ListByDelivery returns the recorded track of a delivery in time order.
func (r *LocationHistoryRepo) ListByDelivery(ctx context.Context, deliveryID string, limit int) (_ []models.HistoryPoint, err error) {
	const op = "LocationHistoryRepo.ListByDelivery"
	defer observe(op, time.Now(), &err)

	rows, err := trm.TxorDB(ctx, r.db).Query(ctx, `
		SELECT driver_id, delivery_id, latitude, longitude, speed, heading, recorded_at
		FROM location_history
		WHERE delivery_id = $1
		ORDER BY recorded_at
		LIMIT $2;`, deliveryID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.HistoryPoint, error) {
		var p models.HistoryPoint
		err := row.Scan(&p.DriverID, &p.DeliveryID, &p.Latitude, &p.Longitude, &p.Speed, &p.Heading, &p.Timestamp)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
