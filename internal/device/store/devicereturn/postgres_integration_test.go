//go:build integration

package devicereturn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"drivewise/internal/device/models"
	"drivewise/internal/platform/postgres"
	"drivewise/pkg/platform/sentinel"
	"drivewise/pkg/testutil/containers"
)

type postgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
	ctx   context.Context
}

func TestPostgresStore(t *testing.T) {
	suite.Run(t, new(postgresStoreSuite))
}

func (s *postgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.Require().NoError(postgres.Migrate(s.pg.DB, "../../../../migrations"))
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *postgresStoreSuite) SetupTest() {
	_, err := s.pg.DB.Exec("TRUNCATE device_returns")
	s.Require().NoError(err)
}

func (s *postgresStoreSuite) newReturn(reason models.ReturnReason) *models.DeviceReturn {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.DeviceReturn{
		ParticipantID: 7,
		DeviceID:      55,
		Reason:        reason,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *postgresStoreSuite) TestInsertGetRoundTrip() {
	in := s.newReturn(models.ReasonDeviceProblem)
	abandoned := in.CreatedAt.Add(-time.Hour)
	in.AbandonedAt = &abandoned

	s.Require().NoError(s.store.Insert(s.ctx, in))

	got, err := s.store.Get(s.ctx, in.ParticipantID, in.DeviceID)
	s.Require().NoError(err)
	s.Equal(in.ParticipantID, got.ParticipantID)
	s.Equal(in.DeviceID, got.DeviceID)
	s.Equal(models.ReasonDeviceProblem, got.Reason)
	s.Require().NotNil(got.AbandonedAt)
	s.True(got.AbandonedAt.Equal(abandoned))
	s.Nil(got.ReceivedAt)
}

func (s *postgresStoreSuite) TestGetMissingReturnsNotFound() {
	_, err := s.store.Get(s.ctx, 7, 55)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *postgresStoreSuite) TestDuplicateInsertFails() {
	in := s.newReturn(models.ReasonOptOut)
	s.Require().NoError(s.store.Insert(s.ctx, in))
	s.Error(s.store.Insert(s.ctx, in))
}

func (s *postgresStoreSuite) TestUpdateReplacesReason() {
	in := s.newReturn(models.ReasonDeviceProblem)
	s.Require().NoError(s.store.Insert(s.ctx, in))

	in.Reason = models.ReasonOptOut
	in.UpdatedAt = in.UpdatedAt.Add(time.Minute)
	s.Require().NoError(s.store.Update(s.ctx, in))

	got, err := s.store.Get(s.ctx, in.ParticipantID, in.DeviceID)
	s.Require().NoError(err)
	s.Equal(models.ReasonOptOut, got.Reason)

	var count int
	s.Require().NoError(s.pg.DB.QueryRow("SELECT COUNT(*) FROM device_returns").Scan(&count))
	s.Equal(1, count)
}

func (s *postgresStoreSuite) TestUpdateMissingReturnsNotFound() {
	in := s.newReturn(models.ReasonAbandoned)
	s.ErrorIs(s.store.Update(s.ctx, in), sentinel.ErrNotFound)
}
