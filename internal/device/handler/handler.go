// Package handler exposes device lifecycle operations over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"drivewise/internal/device/models"
	deviceservice "drivewise/internal/device/service"
	"drivewise/internal/platform/metrics"
	"drivewise/internal/platform/middleware"
	"drivewise/internal/transport/http/shared"
	dErrors "drivewise/pkg/domain-errors"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/middleware/requesttime"
)

// Service defines the device orchestration operations the handler exposes.
type Service interface {
	MarkDefective(ctx context.Context, participantID domain.ParticipantID, serial string) (domain.Result, error)
	MarkAbandoned(ctx context.Context, participantID domain.ParticipantID, serial string) (domain.Result, error)
	ReplaceDevice(ctx context.Context, participantID domain.ParticipantID) (domain.Result, error)
	SwapDevice(ctx context.Context, sourceID, destinationID domain.ParticipantID) (domain.Result, error)
	Ping(ctx context.Context, serial string) (domain.Result, error)
	Reset(ctx context.Context, serial string) (domain.Result, error)
	GetAudio(ctx context.Context, serial string) (deviceservice.AudioResult, error)
	SetAudio(ctx context.Context, serial string, enabled bool) (domain.Result, error)
	UpdateAudio(ctx context.Context, serial string, state models.AudioState) (domain.Result, error)
}

// Handler handles device lifecycle endpoints.
type Handler struct {
	logger  *slog.Logger
	devices Service
	metrics *metrics.Metrics
}

// New creates a device Handler.
func New(devices Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, devices: devices, metrics: m}
}

// Register registers the device routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(dr chi.Router) {
		dr.Use(middleware.Recovery(h.logger))
		dr.Use(middleware.RequestID)
		dr.Use(requesttime.Middleware)
		dr.Use(middleware.Logger(h.logger))
		dr.Use(middleware.Timeout(30 * time.Second))
		dr.Use(middleware.ContentTypeJSON)
		dr.Use(middleware.Latency(h.metrics))

		dr.Post("/participants/{participantID}/device/defective", h.handleMarkDefective)
		dr.Post("/participants/{participantID}/device/abandoned", h.handleMarkAbandoned)
		dr.Post("/participants/{participantID}/device/replace", h.handleReplaceDevice)
		dr.Post("/devices/swap", h.handleSwapDevice)
		dr.Post("/devices/{serial}/ping", h.handlePing)
		dr.Post("/devices/{serial}/reset", h.handleReset)
		dr.Get("/devices/{serial}/audio", h.handleGetAudio)
		dr.Post("/devices/{serial}/audio", h.handleSetAudio)
		dr.Put("/devices/{serial}/audio", h.handleUpdateAudio)
	})
}

type markDeviceRequest struct {
	SerialNumber string `json:"serial_number"`
}

type swapRequest struct {
	SourceParticipantID      int64 `json:"source_participant_id"`
	DestinationParticipantID int64 `json:"destination_participant_id"`
}

type setAudioRequest struct {
	Enabled bool `json:"enabled"`
}

func (h *Handler) handleMarkDefective(w http.ResponseWriter, r *http.Request) {
	h.handleMark(w, r, h.devices.MarkDefective)
}

func (h *Handler) handleMarkAbandoned(w http.ResponseWriter, r *http.Request) {
	h.handleMark(w, r, h.devices.MarkAbandoned)
}

func (h *Handler) handleMark(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.ParticipantID, string) (domain.Result, error)) {
	ctx := r.Context()

	participantID, err := domain.ParseParticipantID(chi.URLParam(r, "participantID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req markDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := op(ctx, participantID, req.SerialNumber)
	if err != nil {
		h.logError(ctx, "device status change failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteResult(w, res, res)
}

func (h *Handler) handleReplaceDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	participantID, err := domain.ParseParticipantID(chi.URLParam(r, "participantID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	res, err := h.devices.ReplaceDevice(ctx, participantID)
	if err != nil {
		h.logError(ctx, "device replacement failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteResult(w, res, res)
}

func (h *Handler) handleSwapDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.devices.SwapDevice(ctx,
		domain.ParticipantID(req.SourceParticipantID),
		domain.ParticipantID(req.DestinationParticipantID))
	if err != nil {
		h.logError(ctx, "device swap failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteResult(w, res, res)
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	h.handleCommand(w, r, h.devices.Ping)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.handleCommand(w, r, h.devices.Reset)
}

func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (domain.Result, error)) {
	ctx := r.Context()
	res, err := op(ctx, chi.URLParam(r, "serial"))
	if err != nil {
		h.logError(ctx, "device command failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteResult(w, res, res)
}

func (h *Handler) handleGetAudio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.devices.GetAudio(ctx, chi.URLParam(r, "serial"))
	if err != nil {
		h.logError(ctx, "audio read failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteResult(w, res, res.Result)
}

func (h *Handler) handleSetAudio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req setAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.devices.SetAudio(ctx, chi.URLParam(r, "serial"), req.Enabled)
	if err != nil {
		h.logError(ctx, "audio switch failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteResult(w, res, res)
}

func (h *Handler) handleUpdateAudio(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var state models.AudioState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.devices.UpdateAudio(ctx, chi.URLParam(r, "serial"), state)
	if err != nil {
		h.logError(ctx, "audio update failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteResult(w, res, res)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}
