package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	devicemodels "drivewise/internal/device/models"
	"drivewise/internal/participant/models"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
)

// PostgresStore reads the accounts projection. The projection is maintained
// by provisioning jobs outside this service, so there is no write path here.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetByParticipant(ctx context.Context, id domain.ParticipantID) (*models.Account, error) {
	const query = `
		SELECT participant_id, group_id, device_experience, device_id, device_status,
		       serial_number, vin, reported_vin, vehicle_id, vehicle_make,
		       vehicle_model, vehicle_year, device_received_at, device_abandoned_at
		FROM accounts
		WHERE participant_id = $1
	`
	var (
		a            models.Account
		deviceID     sql.NullInt64
		deviceStatus sql.NullString
		serial       sql.NullString
		vin          sql.NullString
		reportedVIN  sql.NullString
		vehicleID    sql.NullInt64
		vehicleMake  sql.NullString
		vehicleModel sql.NullString
		vehicleYear  sql.NullInt64
		receivedAt   sql.NullTime
		abandonedAt  sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, int64(id)).Scan(
		&a.ParticipantID, &a.GroupID, &a.DeviceExperience, &deviceID, &deviceStatus,
		&serial, &vin, &reportedVIN, &vehicleID, &vehicleMake,
		&vehicleModel, &vehicleYear, &receivedAt, &abandonedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	if deviceID.Valid {
		d := domain.DeviceID(deviceID.Int64)
		a.DeviceID = &d
	}
	if vehicleID.Valid {
		v := domain.VehicleID(vehicleID.Int64)
		a.VehicleID = &v
	}
	if deviceStatus.Valid {
		a.DeviceStatus = devicemodels.DeviceStatus(deviceStatus.String)
	}
	a.SerialNumber = serial.String
	a.VIN = vin.String
	a.ReportedVIN = reportedVIN.String
	a.VehicleMake = vehicleMake.String
	a.VehicleModel = vehicleModel.String
	a.VehicleYear = int(vehicleYear.Int64)
	if receivedAt.Valid {
		t := receivedAt.Time
		a.DeviceReceivedAt = &t
	}
	if abandonedAt.Valid {
		t := abandonedAt.Time
		a.DeviceAbandonedAt = &t
	}
	return &a, nil
}
