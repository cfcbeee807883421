// Package handler exposes the public event catalog listing.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aakar/internal/events"
	"aakar/internal/platform/middleware"
	"aakar/pkg/platform/httputil"
)

// Lister serves the active catalog; in production this is the Redis cache.
type Lister interface {
	ListActive(ctx context.Context) ([]events.Event, error)
}

// Handler handles public catalog requests.
type Handler struct {
	catalog Lister
	logger  *slog.Logger
}

func New(catalog Lister, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

// Register mounts the catalog route.
func (h *Handler) Register(r chi.Router) {
	r.Get("/events", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	list, err := h.catalog.ListActive(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list events",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"events": list,
		"total":  len(list),
	})
}
