// Package handler exposes the organiser API: login, participant roster and
// export, and event catalog management.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"aakar/internal/admin"
	"aakar/internal/events"
	"aakar/internal/participant"
	"aakar/internal/platform/middleware"
	dErrors "aakar/pkg/domain-errors"
	"aakar/pkg/platform/httputil"
)

// Service defines the admin operations consumed by this handler.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	ListParticipants(ctx context.Context, filter participant.ListFilter) ([]*participant.Participant, error)
	GetParticipant(ctx context.Context, id uuid.UUID) (*participant.Participant, error)
	ExportParticipantsCSV(ctx context.Context, w io.Writer, filter participant.ListFilter) error
	SaveEvent(ctx context.Context, e events.Event) error
	DeactivateEvent(ctx context.Context, id int) error
}

// Handler wires admin endpoints to the admin service.
type Handler struct {
	service   Service
	validator middleware.JWTValidator
	logger    *slog.Logger
}

// New constructs an admin handler.
func New(service Service, validator middleware.JWTValidator, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		validator: validator,
		logger:    logger,
	}
}

// Register mounts the admin routes. Everything except login requires a
// bearer token.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(h.validator, h.logger))

		r.Get("/admin/participants", h.handleListParticipants)
		r.Get("/admin/participants/export", h.handleExportParticipants)
		r.Get("/admin/participants/{id}", h.handleGetParticipant)
		r.Post("/admin/events", h.handleSaveEvent)
		r.Put("/admin/events/{id}", h.handleUpdateEvent)
		r.Delete("/admin/events/{id}", h.handleDeactivateEvent)
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req admin.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	token, err := h.service.Login(ctx, req.Username, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, admin.LoginResponse{Token: token})
}

func (h *Handler) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	list, err := h.service.ListParticipants(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list participants",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := admin.ParticipantsListResponse{
		Participants: make([]*admin.ParticipantResponse, 0, len(list)),
		Total:        len(list),
	}
	for _, p := range list {
		resp.Participants = append(resp.Participants, admin.FromParticipant(p))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetParticipant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid participant id"))
		return
	}

	p, err := h.service.GetParticipant(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, admin.FromParticipant(p))
}

func (h *Handler) handleExportParticipants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=participants-%s.csv", time.Now().Format("2006-01-02")))
	if err := h.service.ExportParticipantsCSV(ctx, w, filter); err != nil {
		// Headers are already out; all that is left is to log.
		h.logger.ErrorContext(ctx, "participant export failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
}

func (h *Handler) handleSaveEvent(w http.ResponseWriter, r *http.Request) {
	h.saveEvent(w, r, 0)
}

func (h *Handler) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return
	}
	h.saveEvent(w, r, id)
}

// saveEvent handles both create and update; a non-zero pathID pins the
// payload to the event in the URL.
func (h *Handler) saveEvent(w http.ResponseWriter, r *http.Request, pathID int) {
	ctx := r.Context()

	var e events.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if pathID != 0 {
		e.ID = pathID
	}

	if err := h.service.SaveEvent(ctx, e); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "event saved",
		"admin", middleware.GetAdmin(ctx),
		"event_id", e.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true, "event_id": e.ID})
}

func (h *Handler) handleDeactivateEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid event id"))
		return
	}

	if err := h.service.DeactivateEvent(ctx, id); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "event deactivated",
		"admin", middleware.GetAdmin(ctx),
		"event_id", id,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"success": true})
}

func filterFromQuery(r *http.Request) (participant.ListFilter, error) {
	var filter participant.ListFilter
	if raw := r.URL.Query().Get("event_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			return filter, dErrors.New(dErrors.CodeBadRequest, "invalid event_id filter")
		}
		filter.EventID = id
	}
	return filter, nil
}
