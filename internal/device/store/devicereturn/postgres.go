package devicereturn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"drivewise/internal/device/models"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
	sqltx "drivewise/pkg/platform/tx"
)

// PostgresStore persists device returns in PostgreSQL. A unique constraint on
// (participant_id, device_id) backs the one-row-per-pair invariant.
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

func (s *PostgresStore) Get(ctx context.Context, participantID domain.ParticipantID, deviceID domain.DeviceID) (*models.DeviceReturn, error) {
	const query = `
		SELECT participant_id, device_id, reason, received_at, abandoned_at, created_at, updated_at
		FROM device_returns
		WHERE participant_id = $1 AND device_id = $2
	`
	var (
		r           models.DeviceReturn
		receivedAt  sql.NullTime
		abandonedAt sql.NullTime
	)
	err := s.q(ctx).QueryRowContext(ctx, query, int64(participantID), int64(deviceID)).
		Scan(&r.ParticipantID, &r.DeviceID, &r.Reason, &receivedAt, &abandonedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get device return: %w", err)
	}
	if receivedAt.Valid {
		t := receivedAt.Time
		r.ReceivedAt = &t
	}
	if abandonedAt.Valid {
		t := abandonedAt.Time
		r.AbandonedAt = &t
	}
	return &r, nil
}

func (s *PostgresStore) Insert(ctx context.Context, r *models.DeviceReturn) error {
	const query = `
		INSERT INTO device_returns (participant_id, device_id, reason, received_at, abandoned_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		int64(r.ParticipantID), int64(r.DeviceID), string(r.Reason),
		nullTime(r.ReceivedAt), nullTime(r.AbandonedAt), r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert device return: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, r *models.DeviceReturn) error {
	const query = `
		UPDATE device_returns
		SET reason = $3, received_at = $4, abandoned_at = $5, updated_at = $6
		WHERE participant_id = $1 AND device_id = $2
	`
	res, err := s.q(ctx).ExecContext(ctx, query,
		int64(r.ParticipantID), int64(r.DeviceID), string(r.Reason),
		nullTime(r.ReceivedAt), nullTime(r.AbandonedAt), r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update device return: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update device return: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
