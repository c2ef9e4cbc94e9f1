package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"drivewise/internal/device/audio"
	cloudmocks "drivewise/internal/device/cloud/mocks"
	"drivewise/internal/device/models"
	"drivewise/internal/device/recovery"
	registrymocks "drivewise/internal/device/registry/mocks"
	simmocks "drivewise/internal/device/sim/mocks"
	"drivewise/internal/device/store/cacheddevice"
	"drivewise/internal/device/store/deviceorder"
	"drivewise/internal/device/store/devicereturn"
	pmodels "drivewise/internal/participant/models"
	pservice "drivewise/internal/participant/service"
	accountstore "drivewise/internal/participant/store/account"
	participantstore "drivewise/internal/participant/store/participant"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/sentinel"
	"drivewise/pkg/platform/uow"
	"drivewise/pkg/requestcontext"
)

type deviceServiceSuite struct {
	suite.Suite

	ctrl         *gomock.Controller
	registry     *registrymocks.MockClient
	sim          *simmocks.MockClient
	cloud        *cloudmocks.MockClient
	participants *participantstore.InMemory
	accounts     *accountstore.InMemory
	orders       *deviceorder.InMemory
	returns      *devicereturn.InMemory
	cache        *cacheddevice.InMemory
	service      *Service

	ctx context.Context
	now time.Time
}

func TestDeviceServiceSuite(t *testing.T) {
	suite.Run(t, new(deviceServiceSuite))
}

func (s *deviceServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.registry = registrymocks.NewMockClient(s.ctrl)
	s.sim = simmocks.NewMockClient(s.ctrl)
	s.cloud = cloudmocks.NewMockClient(s.ctrl)
	s.participants = participantstore.NewInMemory()
	s.accounts = accountstore.NewInMemory()
	s.orders = deviceorder.NewInMemory()
	s.returns = devicereturn.NewInMemory()
	s.cache = cacheddevice.NewInMemory()

	s.service = s.newService(s.orders)

	s.now = time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *deviceServiceSuite) newService(orders DeviceOrderStore) *Service {
	unit := uow.NewMemory(s.participants, s.orders, s.returns)
	rec := recovery.New(s.registry, s.sim, s.returns)
	selector := audio.NewSelector(s.registry, s.cloud)
	return New(s.participants, s.accounts, orders, s.cache, s.registry, rec, selector, unit)
}

func (s *deviceServiceSuite) seedPair() {
	d55, d66 := domain.DeviceID(55), domain.DeviceID(66)
	v9, v10 := domain.VehicleID(9), domain.VehicleID(10)

	s.participants.Seed(pmodels.Participant{
		ID: 7, GroupID: 3, Status: pmodels.StatusEnrolled,
		DeviceID: &d55, VehicleID: &v9, Nickname: "alpha",
	})
	s.participants.Seed(pmodels.Participant{
		ID: 8, GroupID: 3, Status: pmodels.StatusEnrolled,
		DeviceID: &d66, VehicleID: &v10, Nickname: "bravo",
	})
	s.accounts.Seed(pmodels.Account{
		ParticipantID: 7, GroupID: 3, DeviceExperience: pmodels.ExperiencePlugIn,
		DeviceID: &d55, SerialNumber: "SN-055", VehicleID: &v9,
	})
	s.accounts.Seed(pmodels.Account{
		ParticipantID: 8, GroupID: 3, DeviceExperience: pmodels.ExperiencePlugIn,
		DeviceID: &d66, SerialNumber: "SN-066", VehicleID: &v10,
	})
	s.cache.Seed(models.CachedDevice{DeviceID: 55, SerialNumber: "SN-055", Status: models.StatusAssigned})
	s.cache.Seed(models.CachedDevice{DeviceID: 66, SerialNumber: "SN-066", Status: models.StatusAssigned})
}

func (s *deviceServiceSuite) registryDevice() *models.Device {
	return &models.Device{
		ID:           55,
		SerialNumber: "SN-055",
		SIMID:        "SIM-055",
		Status:       models.StatusAssigned,
		Location:     models.LocationInVehicle,
	}
}

func (s *deviceServiceSuite) TestMarkDefectiveKeepsLocation() {
	s.seedPair()
	s.registry.EXPECT().GetDeviceBySerialNumber(gomock.Any(), "SN-055").
		Return(s.registryDevice(), nil)
	s.registry.EXPECT().
		UpdateStatus(gomock.Any(), domain.DeviceID(55), models.StatusDefective, models.LocationInVehicle).
		Return(nil)
	s.sim.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil)

	res, err := s.service.MarkDefective(s.ctx, 7, "SN-055")
	s.Require().NoError(err)
	s.True(res.Succeeded())

	row, err := s.returns.Get(s.ctx, 7, 55)
	s.Require().NoError(err)
	s.Equal(models.ReasonDeviceProblem, row.Reason)
}

func (s *deviceServiceSuite) TestMarkAbandonedClearsLocation() {
	s.seedPair()
	s.registry.EXPECT().GetDeviceBySerialNumber(gomock.Any(), "SN-055").
		Return(s.registryDevice(), nil)
	s.registry.EXPECT().
		UpdateStatus(gomock.Any(), domain.DeviceID(55), models.StatusAbandoned, models.LocationUnknown).
		Return(nil)
	s.sim.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil)

	res, err := s.service.MarkAbandoned(s.ctx, 7, "SN-055")
	s.Require().NoError(err)
	s.True(res.Succeeded())

	row, err := s.returns.Get(s.ctx, 7, 55)
	s.Require().NoError(err)
	s.Equal(models.ReasonAbandoned, row.Reason)
	s.Require().NotNil(row.AbandonedAt)
	s.Equal(s.now, *row.AbandonedAt)
}

func (s *deviceServiceSuite) TestMarkDefectiveSimFailureDiscardsLocalWrite() {
	s.seedPair()
	s.registry.EXPECT().GetDeviceBySerialNumber(gomock.Any(), "SN-055").
		Return(s.registryDevice(), nil)
	s.registry.EXPECT().
		UpdateStatus(gomock.Any(), domain.DeviceID(55), gomock.Any(), gomock.Any()).
		Return(nil)
	s.sim.EXPECT().Add(gomock.Any(), gomock.Any()).Return(errors.New("carrier timeout"))

	res, err := s.service.MarkDefective(s.ctx, 7, "SN-055")
	s.Require().NoError(err)
	s.False(res.Succeeded())
	s.Equal(recovery.CodeSimDeactivateFailed, res.FirstCode())

	// The registry already saw the push, but the return row rolled back.
	s.Equal(0, s.returns.Count())
}

func (s *deviceServiceSuite) TestMarkDefectiveUnknownParticipant() {
	res, err := s.service.MarkDefective(s.ctx, 999, "SN-055")
	s.Require().NoError(err)
	s.Equal(CodeParticipantNotFound, res.FirstCode())
}

func (s *deviceServiceSuite) TestMarkDefectiveUnknownDevice() {
	s.seedPair()
	s.registry.EXPECT().GetDeviceBySerialNumber(gomock.Any(), "SN-MISSING").
		Return(nil, sentinel.ErrNotFound)

	res, err := s.service.MarkDefective(s.ctx, 7, "SN-MISSING")
	s.Require().NoError(err)
	s.Equal(CodeDeviceNotFound, res.FirstCode())
}

func (s *deviceServiceSuite) TestReplaceDeviceCreatesOrderAndRecovers() {
	s.seedPair()
	account, err := s.accounts.GetByParticipant(s.ctx, 7)
	s.Require().NoError(err)
	account.VIN = "VIN-ACCOUNT"
	account.VehicleMake = "  Honda "
	account.VehicleModel = ""
	account.VehicleYear = 2021
	s.accounts.Seed(*account)

	s.registry.EXPECT().GetDeviceBySerialNumber(gomock.Any(), "SN-055").
		Return(s.registryDevice(), nil)
	s.registry.EXPECT().
		UpdateStatus(gomock.Any(), domain.DeviceID(55), models.StatusAssigned, models.LocationInVehicle).
		Return(nil)
	s.sim.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil)

	res, err := s.service.ReplaceDevice(s.ctx, 7)
	s.Require().NoError(err)
	s.True(res.Succeeded())

	orders, err := s.orders.ListByParticipant(s.ctx, 7)
	s.Require().NoError(err)
	s.Require().Len(orders, 1)
	s.Equal(models.OrderTypeReplacement, orders[0].Type)
	s.Equal(models.OrderStatusNew, orders[0].Status)
	s.Equal("VIN-ACCOUNT", orders[0].VIN)
	s.Require().NotNil(orders[0].VehicleMake)
	s.Equal("Honda", *orders[0].VehicleMake)
	s.Nil(orders[0].VehicleModel)
	s.Require().NotNil(orders[0].VehicleYear)
	s.Equal(int16(2021), *orders[0].VehicleYear)

	row, err := s.returns.Get(s.ctx, 7, 55)
	s.Require().NoError(err)
	s.Equal(models.ReasonDeviceReplaced, row.Reason)
}

func (s *deviceServiceSuite) TestReplaceDeviceVINFallsBackToRegistry() {
	d55 := domain.DeviceID(55)
	s.participants.Seed(pmodels.Participant{
		ID: 7, GroupID: 3, Status: pmodels.StatusEnrolled, DeviceID: &d55,
	})
	s.accounts.Seed(pmodels.Account{
		ParticipantID: 7, GroupID: 3, DeviceExperience: pmodels.ExperiencePlugIn,
		DeviceID: &d55, SerialNumber: "SN-055", VIN: "", ReportedVIN: "  ",
	})

	device := s.registryDevice()
	device.ReportedVIN = "VIN-REGISTRY"
	s.registry.EXPECT().GetDeviceBySerialNumber(gomock.Any(), "SN-055").
		Return(device, nil)
	s.registry.EXPECT().
		UpdateStatus(gomock.Any(), domain.DeviceID(55), gomock.Any(), gomock.Any()).
		Return(nil)
	s.sim.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil)

	res, err := s.service.ReplaceDevice(s.ctx, 7)
	s.Require().NoError(err)
	s.True(res.Succeeded())

	orders, err := s.orders.ListByParticipant(s.ctx, 7)
	s.Require().NoError(err)
	s.Require().Len(orders, 1)
	s.Equal("VIN-REGISTRY", orders[0].VIN)
}

func (s *deviceServiceSuite) TestReplaceDeviceWithoutDevice() {
	s.participants.Seed(pmodels.Participant{ID: 7, GroupID: 3, Status: pmodels.StatusEnrolled})

	res, err := s.service.ReplaceDevice(s.ctx, 7)
	s.Require().NoError(err)
	s.Equal(pservice.CodeParticipantNoDevice, res.FirstCode())
}

func (s *deviceServiceSuite) TestReplaceDeviceOrderFailureSkipsRecovery() {
	s.seedPair()
	svc := s.newService(failingOrderStore{})

	// Only the lookup runs; no status push and no SIM call may happen.
	s.registry.EXPECT().GetDeviceBySerialNumber(gomock.Any(), "SN-055").
		Return(s.registryDevice(), nil)

	_, err := svc.ReplaceDevice(s.ctx, 7)
	s.Require().Error(err)
	s.Equal(0, s.returns.Count())
}

func (s *deviceServiceSuite) TestReplaceDeviceSagaFailureDiscardsOrder() {
	s.seedPair()
	s.registry.EXPECT().GetDeviceBySerialNumber(gomock.Any(), "SN-055").
		Return(s.registryDevice(), nil)
	s.registry.EXPECT().
		UpdateStatus(gomock.Any(), domain.DeviceID(55), gomock.Any(), gomock.Any()).
		Return(errors.New("registry down"))
	s.sim.EXPECT().Add(gomock.Any(), gomock.Any()).Return(nil)

	res, err := s.service.ReplaceDevice(s.ctx, 7)
	s.Require().NoError(err)
	s.False(res.Succeeded())

	orders, err := s.orders.ListByParticipant(s.ctx, 7)
	s.Require().NoError(err)
	s.Empty(orders)
	s.Equal(0, s.returns.Count())
}

func (s *deviceServiceSuite) TestSwapDeviceSwapsAssignmentsAndKeepsNicknames() {
	s.seedPair()

	res, err := s.service.SwapDevice(s.ctx, 7, 8)
	s.Require().NoError(err)
	s.True(res.Succeeded())

	p7, err := s.participants.Get(s.ctx, 7)
	s.Require().NoError(err)
	p8, err := s.participants.Get(s.ctx, 8)
	s.Require().NoError(err)

	s.Equal(domain.DeviceID(66), *p7.DeviceID)
	s.Equal(domain.DeviceID(55), *p8.DeviceID)
	s.Equal(domain.VehicleID(10), *p7.VehicleID)
	s.Equal(domain.VehicleID(9), *p8.VehicleID)
	s.Equal("alpha", p7.Nickname)
	s.Equal("bravo", p8.Nickname)
}

func (s *deviceServiceSuite) TestSwapReportsSourceSideFirst() {
	s.seedPair()

	source, err := s.accounts.GetByParticipant(s.ctx, 7)
	s.Require().NoError(err)
	source.DeviceExperience = pmodels.ExperienceMobile
	s.accounts.Seed(*source)

	s.Require().NoError(s.participants.UpdateStatus(s.ctx, 8, pmodels.StatusPending, s.now))

	res, err := s.service.SwapDevice(s.ctx, 7, 8)
	s.Require().NoError(err)
	s.Require().Len(res.Errors, 2)
	s.Equal(pservice.CodeNotPlugInExperience, res.Errors[0].Code)
	s.Equal(pservice.CodeNotEnrolled, res.Errors[1].Code)
}

func (s *deviceServiceSuite) TestSwapBlockedByReceivedTimestamp() {
	s.seedPair()

	source, err := s.accounts.GetByParticipant(s.ctx, 7)
	s.Require().NoError(err)
	received := s.now.Add(-24 * time.Hour)
	source.DeviceReceivedAt = &received
	s.accounts.Seed(*source)

	res, err := s.service.SwapDevice(s.ctx, 7, 8)
	s.Require().NoError(err)
	s.Equal(pservice.CodeDeviceReturned, res.FirstCode())
}

func (s *deviceServiceSuite) TestSwapBlockedByDeviceStatus() {
	s.seedPair()
	s.cache.Seed(models.CachedDevice{DeviceID: 55, SerialNumber: "SN-055", Status: models.StatusDefective})

	res, err := s.service.SwapDevice(s.ctx, 7, 8)
	s.Require().NoError(err)
	s.Equal(pservice.CodeDeviceNotAssigned, res.FirstCode())
}

func (s *deviceServiceSuite) TestSwapRequiresSameGroup() {
	s.seedPair()
	p8, err := s.participants.Get(s.ctx, 8)
	s.Require().NoError(err)
	p8.GroupID = 4
	s.participants.Seed(*p8)

	res, err := s.service.SwapDevice(s.ctx, 7, 8)
	s.Require().NoError(err)
	s.Equal(CodeParticipantsNotInSameGroup, res.FirstCode())
}

func (s *deviceServiceSuite) TestSwapRejectsIdenticalParticipants() {
	res, err := s.service.SwapDevice(s.ctx, 7, 7)
	s.Require().NoError(err)
	s.Equal(CodeIdenticalParticipants, res.FirstCode())
}

func (s *deviceServiceSuite) TestPingLegacyDevice() {
	s.registry.EXPECT().GetDeviceBySerialNumber(gomock.Any(), "SN-055").
		Return(s.registryDevice(), nil)
	s.registry.EXPECT().DeviceFeatures(gomock.Any(), domain.DeviceID(55)).
		Return(&models.DeviceFeatures{DeviceID: 55, IoTCapable: false}, nil)
	s.registry.EXPECT().Ping(gomock.Any(), domain.DeviceID(55)).Return(nil)

	res, err := s.service.Ping(s.ctx, "SN-055")
	s.Require().NoError(err)
	s.True(res.Succeeded())
}

func (s *deviceServiceSuite) TestGetAudioFromCloudDevice() {
	s.registry.EXPECT().GetDeviceBySerialNumber(gomock.Any(), "SN-055").
		Return(s.registryDevice(), nil)
	s.registry.EXPECT().DeviceFeatures(gomock.Any(), domain.DeviceID(55)).
		Return(&models.DeviceFeatures{DeviceID: 55, IoTCapable: true}, nil)
	s.cloud.EXPECT().GetAudio(gomock.Any(), domain.DeviceID(55)).
		Return(&models.AudioState{Enabled: true, Volume: 4}, nil)

	res, err := s.service.GetAudio(s.ctx, "SN-055")
	s.Require().NoError(err)
	s.True(res.Succeeded())
	s.Require().NotNil(res.Audio)
	s.True(res.Audio.Enabled)
	s.Equal(4, res.Audio.Volume)
}

func (s *deviceServiceSuite) TestResetCommandFailureIsRenderable() {
	s.registry.EXPECT().GetDeviceBySerialNumber(gomock.Any(), "SN-055").
		Return(s.registryDevice(), nil)
	s.registry.EXPECT().DeviceFeatures(gomock.Any(), domain.DeviceID(55)).
		Return(&models.DeviceFeatures{DeviceID: 55, IoTCapable: false}, nil)
	s.registry.EXPECT().Reset(gomock.Any(), domain.DeviceID(55)).
		Return(errors.New("device offline"))

	res, err := s.service.Reset(s.ctx, "SN-055")
	s.Require().NoError(err)
	s.Equal(CodeDeviceCommandFailed, res.FirstCode())
}

type failingOrderStore struct{}

func (failingOrderStore) Create(context.Context, *models.DeviceOrder) error {
	return errors.New("order insert failed")
}

func TestPickVIN(t *testing.T) {
	assert.Equal(t, "A", pickVIN("A", "B"))
	assert.Equal(t, "B", pickVIN("", "  ", "B", "C"))
	assert.Equal(t, "", pickVIN("", " "))
}

func TestNormalizeYear(t *testing.T) {
	assert.Nil(t, normalizeYear(0))
	assert.Nil(t, normalizeYear(100000))
	if got := normalizeYear(1998); assert.NotNil(t, got) {
		assert.Equal(t, int16(1998), *got)
	}
}
