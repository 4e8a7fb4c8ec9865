package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
	pg "github.com/Temutjin2k/sitetrack/pkg/postgres"
	"github.com/Temutjin2k/sitetrack/pkg/retry"
	"github.com/Temutjin2k/sitetrack/pkg/trm"
)

type DeliveryRepo struct {
	db *pgxpool.Pool
	tx trm.TxManager
}

func NewDeliveryRepo(db *pgxpool.Pool, tx trm.TxManager) *DeliveryRepo {
	return &DeliveryRepo{db: db, tx: tx}
}

const deliveryColumns = `id, qr_code, route_id, route_name, driver_id, driver_name, vehicle_type, license_plate,
	status, company, notes, scheduled_time, start_time, end_time, created_at, updated_at`

func (r *DeliveryRepo) Create(ctx context.Context, d models.Delivery) (err error) {
	const op = "DeliveryRepo.Create"
	defer observe(op, time.Now(), &err)

	query := `INSERT INTO deliveries (` + deliveryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`

	_, err = trm.TxorDB(ctx, r.db).Exec(ctx, query,
		d.ID, d.QRCode, d.RouteID, d.RouteName, d.DriverID, d.DriverName, d.VehicleType, d.LicensePlate,
		d.Status, d.Company, d.Notes, d.ScheduledTime, d.StartTime, d.EndTime, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	return nil
}

// Update writes the new delivery row and, when ev is set, its audit event in
// one transaction.
func (r *DeliveryRepo) Update(ctx context.Context, d models.Delivery, ev *models.DeliveryEvent) (err error) {
	const op = "DeliveryRepo.Update"
	defer observe(op, time.Now(), &err)

	err = r.tx.Do(ctx, func(ctx context.Context) error {
		q := trm.TxorDB(ctx, r.db)

		tag, err := q.Exec(ctx, `
			UPDATE deliveries SET
				driver_id = $2, driver_name = $3, vehicle_type = $4, license_plate = $5, status = $6,
				company = $7, start_time = $8, end_time = $9, updated_at = $10
			WHERE id = $1;`,
			d.ID, d.DriverID, d.DriverName, d.VehicleType, d.LicensePlate, d.Status,
			d.Company, d.StartTime, d.EndTime, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update delivery: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return retry.Permanent(types.ErrDeliveryNotFound)
		}

		if ev == nil {
			return nil
		}
		_, err = q.Exec(ctx, `
			INSERT INTO delivery_events (delivery_id, action, from_status, to_status, actor_id, actor_role, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			ev.DeliveryID, ev.Action, ev.From, ev.To, ev.ActorID, ev.ActorRole, ev.At)
		if err != nil {
			return fmt.Errorf("insert delivery event: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, classify(err))
	}
	return nil
}

func (r *DeliveryRepo) List(ctx context.Context) (_ []models.Delivery, err error) {
	const op = "DeliveryRepo.List"
	defer observe(op, time.Now(), &err)

	rows, err := trm.TxorDB(ctx, r.db).Query(ctx, `SELECT `+deliveryColumns+` FROM deliveries ORDER BY created_at;`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Delivery, error) {
		var d models.Delivery
		err := row.Scan(&d.ID, &d.QRCode, &d.RouteID, &d.RouteName, &d.DriverID, &d.DriverName,
			&d.VehicleType, &d.LicensePlate, &d.Status, &d.Company, &d.Notes,
			&d.ScheduledTime, &d.StartTime, &d.EndTime, &d.CreatedAt, &d.UpdatedAt)
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// classify marks errors that a retry cannot fix as permanent.
func classify(err error) error {
	if errors.Is(err, retry.ErrPermanent) || pg.IsRetryable(err) {
		return err
	}
	return retry.Permanent(err)
}

// observe records query metrics for op.
func observe(op string, start time.Time, err *error) {
	metrics.RecordDatabaseQuery(op, *err, time.Since(start))
}
