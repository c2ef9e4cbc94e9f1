package recovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"drivewise/internal/device/models"
	registrymocks "drivewise/internal/device/registry/mocks"
	"drivewise/internal/device/sim"
	simmocks "drivewise/internal/device/sim/mocks"
	"drivewise/internal/device/store/devicereturn"
	domainerrors "drivewise/pkg/domain-errors"
	"drivewise/pkg/domain"
	"drivewise/pkg/requestcontext"
)

type recoverySuite struct {
	suite.Suite

	ctrl     *gomock.Controller
	registry *registrymocks.MockClient
	sim      *simmocks.MockClient
	returns  *devicereturn.InMemory
	service  *Service

	ctx context.Context
	now time.Time
}

func TestRecoverySuite(t *testing.T) {
	suite.Run(t, new(recoverySuite))
}

func (s *recoverySuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.registry = registrymocks.NewMockClient(s.ctrl)
	s.sim = simmocks.NewMockClient(s.ctrl)
	s.returns = devicereturn.NewInMemory()
	s.service = New(s.registry, s.sim, s.returns)

	s.now = time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *recoverySuite) defectiveDevice() *models.Device {
	return &models.Device{
		ID:           55,
		SerialNumber: "SN-055",
		SIMID:        "SIM-055",
		Status:       models.StatusDefective,
		Location:     models.LocationInVehicle,
	}
}

func (s *recoverySuite) TestFullSuccessInsertsReturnRow() {
	device := s.defectiveDevice()
	s.registry.EXPECT().
		UpdateStatus(s.ctx, device.ID, models.StatusDefective, models.LocationInVehicle).
		Return(nil)
	s.sim.EXPECT().
		Add(s.ctx, sim.Request{Action: sim.ActionDeactivate, SIMID: "SIM-055", EffectiveAt: s.now}).
		Return(nil)

	var res domain.Result
	success, err := s.service.RecoverDevice(s.ctx, device, 7, nil, &res)

	s.Require().NoError(err)
	s.True(success)
	s.Empty(res.Errors)

	row, err := s.returns.Get(s.ctx, 7, 55)
	s.Require().NoError(err)
	s.Equal(models.ReasonDeviceProblem, row.Reason)
	s.Nil(row.AbandonedAt)
}

func (s *recoverySuite) TestRegistryFailureContinuesToRemainingSteps() {
	device := s.defectiveDevice()
	s.registry.EXPECT().
		UpdateStatus(s.ctx, device.ID, gomock.Any(), gomock.Any()).
		Return(errors.New("registry unreachable"))
	s.sim.EXPECT().Add(s.ctx, gomock.Any()).Return(nil)

	var res domain.Result
	success, err := s.service.RecoverDevice(s.ctx, device, 7, nil, &res)

	s.Require().NoError(err)
	s.False(success)
	s.Equal(CodeRegistryUpdateFailed, res.FirstCode())

	// The local write still happens; discarding it is the caller's job.
	s.Equal(1, s.returns.Count())
}

func (s *recoverySuite) TestSimFailureMarksAttemptUnsuccessful() {
	device := s.defectiveDevice()
	s.registry.EXPECT().
		UpdateStatus(s.ctx, device.ID, gomock.Any(), gomock.Any()).
		Return(nil)
	s.sim.EXPECT().Add(s.ctx, gomock.Any()).Return(errors.New("carrier timeout"))

	var res domain.Result
	success, err := s.service.RecoverDevice(s.ctx, device, 7, nil, &res)

	s.Require().NoError(err)
	s.False(success)
	s.Equal(CodeSimDeactivateFailed, res.FirstCode())
}

func (s *recoverySuite) TestBothRemoteFailuresRecordOneIssueEach() {
	device := s.defectiveDevice()
	s.registry.EXPECT().
		UpdateStatus(s.ctx, device.ID, gomock.Any(), gomock.Any()).
		Return(errors.New("down"))
	s.sim.EXPECT().Add(s.ctx, gomock.Any()).Return(errors.New("down"))

	var res domain.Result
	success, err := s.service.RecoverDevice(s.ctx, device, 7, nil, &res)

	s.Require().NoError(err)
	s.False(success)
	s.Require().Len(res.Errors, 2)
	s.Equal(CodeRegistryUpdateFailed, res.Errors[0].Code)
	s.Equal(CodeSimDeactivateFailed, res.Errors[1].Code)
}

func (s *recoverySuite) TestDerivedAbandonedReasonStampsTimestamp() {
	device := s.defectiveDevice()
	device.Status = models.StatusAbandoned
	device.Location = models.LocationUnknown

	s.registry.EXPECT().
		UpdateStatus(s.ctx, device.ID, models.StatusAbandoned, models.LocationUnknown).
		Return(nil)
	s.sim.EXPECT().Add(s.ctx, gomock.Any()).Return(nil)

	var res domain.Result
	success, err := s.service.RecoverDevice(s.ctx, device, 7, nil, &res)

	s.Require().NoError(err)
	s.True(success)

	row, err := s.returns.Get(s.ctx, 7, 55)
	s.Require().NoError(err)
	s.Equal(models.ReasonAbandoned, row.Reason)
	s.Require().NotNil(row.AbandonedAt)
	s.Equal(s.now, *row.AbandonedAt)
}

func (s *recoverySuite) TestOverrideReasonNeverStampsAbandonedTimestamp() {
	device := s.defectiveDevice()
	device.Status = models.StatusAbandoned
	device.Location = models.LocationUnknown

	s.registry.EXPECT().
		UpdateStatus(s.ctx, device.ID, gomock.Any(), gomock.Any()).
		Return(nil)
	s.sim.EXPECT().Add(s.ctx, gomock.Any()).Return(nil)

	override := models.ReasonOptOut
	var res domain.Result
	success, err := s.service.RecoverDevice(s.ctx, device, 7, &override, &res)

	s.Require().NoError(err)
	s.True(success)

	row, err := s.returns.Get(s.ctx, 7, 55)
	s.Require().NoError(err)
	s.Equal(models.ReasonOptOut, row.Reason)
	s.Nil(row.AbandonedAt)
}

func (s *recoverySuite) TestRepeatedRecoveryKeepsOneRowWithLatestReason() {
	device := s.defectiveDevice()
	s.registry.EXPECT().
		UpdateStatus(s.ctx, device.ID, gomock.Any(), gomock.Any()).
		Return(nil).Times(2)
	s.sim.EXPECT().Add(s.ctx, gomock.Any()).Return(nil).Times(2)

	var res domain.Result
	_, err := s.service.RecoverDevice(s.ctx, device, 7, nil, &res)
	s.Require().NoError(err)

	device.Status = models.StatusAbandoned
	_, err = s.service.RecoverDevice(s.ctx, device, 7, nil, &res)
	s.Require().NoError(err)

	s.Equal(1, s.returns.Count())
	row, err := s.returns.Get(s.ctx, 7, 55)
	s.Require().NoError(err)
	s.Equal(models.ReasonAbandoned, row.Reason)
}

func (s *recoverySuite) TestUnmappedStatusAborts() {
	device := s.defectiveDevice()
	device.Status = models.StatusAvailable

	// The registry push comes first in step order, so it still runs.
	s.registry.EXPECT().
		UpdateStatus(s.ctx, device.ID, models.StatusAvailable, gomock.Any()).
		Return(nil)

	var res domain.Result
	success, err := s.service.RecoverDevice(s.ctx, device, 7, nil, &res)

	s.False(success)
	s.True(domainerrors.HasCode(err, domainerrors.CodeInvariantViolation))
	s.Equal(0, s.returns.Count())
}

func (s *recoverySuite) TestUnsetDeviceFieldsAbortBeforeAnyRemoteCall() {
	device := s.defectiveDevice()
	device.Location = ""

	var res domain.Result
	success, err := s.service.RecoverDevice(s.ctx, device, 7, nil, &res)

	s.False(success)
	s.True(domainerrors.HasCode(err, domainerrors.CodeInvariantViolation))
}
