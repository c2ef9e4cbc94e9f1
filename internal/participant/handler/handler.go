// Package handler exposes participant operations over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"drivewise/internal/platform/metrics"
	"drivewise/internal/platform/middleware"
	"drivewise/internal/transport/http/shared"
	dErrors "drivewise/pkg/domain-errors"
	"drivewise/pkg/domain"
	"drivewise/pkg/platform/middleware/requesttime"
)

// Service defines the participant operations the handler exposes.
type Service interface {
	OptOut(ctx context.Context, participantID domain.ParticipantID, serialOverride string) (domain.Result, error)
	UpdateNickname(ctx context.Context, participantID domain.ParticipantID, nickname string) (domain.Result, error)
}

// Handler handles participant endpoints.
type Handler struct {
	logger       *slog.Logger
	participants Service
	metrics      *metrics.Metrics
}

// New creates a participant Handler.
func New(participants Service, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{logger: logger, participants: participants, metrics: m}
}

// Register registers the participant routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.Recovery(h.logger))
		pr.Use(middleware.RequestID)
		pr.Use(requesttime.Middleware)
		pr.Use(middleware.Logger(h.logger))
		pr.Use(middleware.Timeout(30 * time.Second))
		pr.Use(middleware.ContentTypeJSON)
		pr.Use(middleware.Latency(h.metrics))

		pr.Post("/participants/{participantID}/optout", h.handleOptOut)
		pr.Put("/participants/{participantID}/nickname", h.handleUpdateNickname)
	})
}

type optOutRequest struct {
	SerialNumber string `json:"serial_number"`
}

type nicknameRequest struct {
	Nickname string `json:"nickname"`
}

func (h *Handler) handleOptOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	participantID, err := domain.ParseParticipantID(chi.URLParam(r, "participantID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	// The body is optional; it only carries a serial override.
	var req optOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.participants.OptOut(ctx, participantID, req.SerialNumber)
	if err != nil {
		h.logger.ErrorContext(ctx, "opt out failed",
			"request_id", middleware.GetRequestID(ctx),
			"participant_id", participantID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteResult(w, res, res)
}

func (h *Handler) handleUpdateNickname(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	participantID, err := domain.ParseParticipantID(chi.URLParam(r, "participantID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req nicknameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	res, err := h.participants.UpdateNickname(ctx, participantID, req.Nickname)
	if err != nil {
		h.logger.ErrorContext(ctx, "nickname update failed",
			"request_id", middleware.GetRequestID(ctx),
			"participant_id", participantID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteResult(w, res, res)
}
