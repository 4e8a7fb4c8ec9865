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

type AlertRepo struct {
	db *pgxpool.Pool
}

func NewAlertRepo(db *pgxpool.Pool) *AlertRepo {
	return &AlertRepo{db: db}
}

// UpsertAlert stores the latest state of an alert. Events can arrive out of
// order across pipeline restarts, so an older update never overwrites a newer one.
func (r *AlertRepo) UpsertAlert(ctx context.Context, a models.Alert) (err error) {
	const op = "AlertRepo.UpsertAlert"
	defer observe(op, time.Now(), &err)

	query := `
		INSERT INTO alerts (id, type, severity, driver_id, driver_name, delivery_id, message, latitude, longitude,
			refreshes, is_resolved, resolved_at, resolved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			severity = EXCLUDED.severity,
			message = EXCLUDED.message,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			refreshes = EXCLUDED.refreshes,
			is_resolved = EXCLUDED.is_resolved,
			resolved_at = EXCLUDED.resolved_at,
			resolved_by = EXCLUDED.resolved_by,
			updated_at = EXCLUDED.updated_at
		WHERE NOT alerts.is_resolved
			AND (EXCLUDED.is_resolved OR alerts.refreshes <= EXCLUDED.refreshes);`

	_, err = trm.TxorDB(ctx, r.db).Exec(ctx, query,
		a.ID, a.Type, a.Severity, a.DriverID, a.DriverName, a.DeliveryID, a.Message, a.Latitude, a.Longitude,
		a.Refreshes, a.IsResolved, a.ResolvedAt, a.ResolvedBy, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListUnresolved returns every open alert, used to restore the alert manager on start.
func (r *AlertRepo) ListUnresolved(ctx context.Context) (_ []models.Alert, err error) {
	const op = "AlertRepo.ListUnresolved"
	defer observe(op, time.Now(), &err)

	rows, err := trm.TxorDB(ctx, r.db).Query(ctx, `
		SELECT id, type, severity, driver_id, driver_name, delivery_id, message, latitude, longitude,
			refreshes, is_resolved, resolved_at, resolved_by, created_at, updated_at
		FROM alerts
		WHERE NOT is_resolved
		ORDER BY created_at;`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Alert, error) {
		var a models.Alert
		err := row.Scan(&a.ID, &a.Type, &a.Severity, &a.DriverID, &a.DriverName, &a.DeliveryID, &a.Message,
			&a.Latitude, &a.Longitude, &a.Refreshes, &a.IsResolved, &a.ResolvedAt, &a.ResolvedBy,
			&a.CreatedAt, &a.UpdatedAt)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
