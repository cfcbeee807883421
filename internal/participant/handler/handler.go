// Package handler exposes the public ticket verification endpoint that
// ticket QR codes point at.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"aakar/internal/participant"
	"aakar/internal/platform/middleware"
	dErrors "aakar/pkg/domain-errors"
	"aakar/pkg/platform/httputil"
	"aakar/pkg/platform/sentinel"
)

// Finder loads participants for verification.
type Finder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*participant.Participant, error)
}

// Handler handles public ticket verification lookups.
type Handler struct {
	store  Finder
	logger *slog.Logger
}

func New(store Finder, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Register mounts the verification route.
func (h *Handler) Register(r chi.Router) {
	r.Get("/verify/{participantID}", h.handleVerify)
}

// verifyResponse exposes only what a gate volunteer needs to check a ticket:
// who it belongs to and which events were paid for.
type verifyResponse struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Phone         string               `json:"phone"`
	College       string               `json:"college,omitempty"`
	Registrations []verifyRegistration `json:"registrations"`
}

type verifyRegistration struct {
	EventID      int       `json:"event_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "participantID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "participant not found"))
		return
	}

	p, err := h.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "participant not found"))
			return
		}
		h.logger.ErrorContext(ctx, "verification lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"participant_id", id,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	resp := verifyResponse{
		ID:      p.ID.String(),
		Name:    p.Name,
		Phone:   p.Phone,
		College: p.College,
	}
	for _, reg := range p.PaidRegistrations() {
		resp.Registrations = append(resp.Registrations, verifyRegistration{
			EventID:      reg.EventID,
			RegisteredAt: reg.RegisteredAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
