package participant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"drivewise/internal/participant/models"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
	sqltx "drivewise/pkg/platform/tx"
)

// PostgresStore persists participants in PostgreSQL. Writes issued inside a
// unit of work pick the transaction up from context.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := sqltx.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Get(ctx context.Context, id domain.ParticipantID) (*models.Participant, error) {
	const query = `
		SELECT id, group_id, status, device_id, vehicle_id, nickname, updated_at
		FROM participants
		WHERE id = $1
	`
	var (
		p         models.Participant
		deviceID  sql.NullInt64
		vehicleID sql.NullInt64
		nickname  sql.NullString
	)
	err := s.q(ctx).QueryRowContext(ctx, query, int64(id)).
		Scan(&p.ID, &p.GroupID, &p.Status, &deviceID, &vehicleID, &nickname, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get participant: %w", err)
	}
	if deviceID.Valid {
		d := domain.DeviceID(deviceID.Int64)
		p.DeviceID = &d
	}
	if vehicleID.Valid {
		v := domain.VehicleID(vehicleID.Int64)
		p.VehicleID = &v
	}
	p.Nickname = nickname.String
	return &p, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.ParticipantID, status models.EnrollmentStatus, now time.Time) error {
	const query = `UPDATE participants SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := s.q(ctx).ExecContext(ctx, query, int64(id), string(status), now)
	if err != nil {
		return fmt.Errorf("update participant status: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) UpdateNickname(ctx context.Context, id domain.ParticipantID, nickname string, now time.Time) error {
	const query = `UPDATE participants SET nickname = $2, updated_at = $3 WHERE id = $1`
	res, err := s.q(ctx).ExecContext(ctx, query, int64(id), nickname, now)
	if err != nil {
		return fmt.Errorf("update participant nickname: %w", err)
	}
	return requireRow(res)
}

// SwapAssignments exchanges device and vehicle assignments between two
// participants in a single statement so the cross-assignment is atomic even
// outside a surrounding unit of work.
func (s *PostgresStore) SwapAssignments(ctx context.Context, sourceID, destinationID domain.ParticipantID, now time.Time) error {
	const query = `
		UPDATE participants AS p
		SET device_id  = other.device_id,
		    vehicle_id = other.vehicle_id,
		    updated_at = $3
		FROM participants AS other
		WHERE p.id IN ($1, $2)
		  AND other.id IN ($1, $2)
		  AND other.id <> p.id
	`
	res, err := s.q(ctx).ExecContext(ctx, query, int64(sourceID), int64(destinationID), now)
	if err != nil {
		return fmt.Errorf("swap participant assignments: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("swap participant assignments: %w", err)
	}
	if affected != 2 {
		return sentinel.ErrNotFound
	}
	return nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
