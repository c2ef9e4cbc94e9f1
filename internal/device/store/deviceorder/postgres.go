package deviceorder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"drivewise/internal/device/models"
	"drivewise/pkg/domain"
	sqltx "drivewise/pkg/platform/tx"
)

// PostgresStore persists device orders in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := sqltx.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, o *models.DeviceOrder) error {
	const query = `
		INSERT INTO device_orders (participant_id, order_type, status, vin, vehicle_make, vehicle_model, vehicle_year, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	var id int64
	err := s.q(ctx).QueryRowContext(ctx, query,
		int64(o.ParticipantID), string(o.Type), string(o.Status),
		o.VIN, o.VehicleMake, o.VehicleModel, o.VehicleYear, o.CreatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("create device order: %w", err)
	}
	o.ID = domain.OrderID(id)
	return nil
}

func (s *PostgresStore) CancelNew(ctx context.Context, participantID domain.ParticipantID, now time.Time) (int, error) {
	const query = `
		UPDATE device_orders
		SET status = $2, updated_at = $3
		WHERE participant_id = $1 AND status = $4
	`
	res, err := s.q(ctx).ExecContext(ctx, query,
		int64(participantID), string(models.OrderStatusCancelled), now, string(models.OrderStatusNew))
	if err != nil {
		return 0, fmt.Errorf("cancel new device orders: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cancel new device orders: %w", err)
	}
	return int(affected), nil
}
